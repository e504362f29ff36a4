package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	users map[uuid.UUID]*domain.User
	err   error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[uuid.UUID]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.users[id]
	return ok, nil
}

func (m *MockUserRepository) SetError(err error) {
	m.err = err
}

// MockDiaryRepository is a mock implementation of DiaryRepository
type MockDiaryRepository struct {
	entries         map[uuid.UUID]*domain.DiaryEntry
	clientRequestID map[string]*domain.DiaryEntry
	err             error
}

func NewMockDiaryRepository() *MockDiaryRepository {
	return &MockDiaryRepository{
		entries:         make(map[uuid.UUID]*domain.DiaryEntry),
		clientRequestID: make(map[string]*domain.DiaryEntry),
	}
}

func (m *MockDiaryRepository) Create(ctx context.Context, entry *domain.DiaryEntry) error {
	if m.err != nil {
		return m.err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	m.entries[entry.ID] = entry
	if entry.ClientRequestID != nil {
		key := entry.UserID.String() + ":" + *entry.ClientRequestID
		m.clientRequestID[key] = entry
	}
	return nil
}

func (m *MockDiaryRepository) GetByClientRequestID(ctx context.Context, userID uuid.UUID, clientRequestID string) (*domain.DiaryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	key := userID.String() + ":" + clientRequestID
	entry, ok := m.clientRequestID[key]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func (m *MockDiaryRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DiaryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.DiaryEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ReportedAt.After(result[j].ReportedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockDiaryRepository) RecentEfficiencies(ctx context.Context, userID uuid.UUID, nights int) ([]float64, error) {
	entries, err := m.ListRecent(ctx, userID, nights)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.Efficiency
	}
	return out, nil
}

func (m *MockDiaryRepository) AdherenceRate(ctx context.Context, userID uuid.UUID, from time.Time) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var total, adhered int
	for _, e := range m.entries {
		if e.UserID != userID || e.ReportedAt.Before(from) {
			continue
		}
		total++
		if e.Adhered {
			adhered++
		}
	}
	if total == 0 {
		return 1, nil
	}
	return float64(adhered) / float64(total), nil
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	snapshots map[uuid.UUID][]*domain.EngineSnapshot
	err       error
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		snapshots: make(map[uuid.UUID][]*domain.EngineSnapshot),
	}
}

func (m *MockSnapshotRepository) Create(ctx context.Context, snapshot *domain.EngineSnapshot) error {
	if m.err != nil {
		return m.err
	}
	snapshot.CreatedAt = time.Now()
	m.snapshots[snapshot.UserID] = append(m.snapshots[snapshot.UserID], snapshot)
	return nil
}

func (m *MockSnapshotRepository) GetLatest(ctx context.Context, userID uuid.UUID) (*domain.EngineSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	snaps := m.snapshots[userID]
	if len(snaps) == 0 {
		return nil, domain.ErrNotFound
	}
	return snaps[len(snaps)-1], nil
}

// MockDecisionRepository is a mock implementation of DecisionRepository
type MockDecisionRepository struct {
	records []*domain.DecisionRecord
	err     error
}

func NewMockDecisionRepository() *MockDecisionRepository {
	return &MockDecisionRepository{}
}

func (m *MockDecisionRepository) Append(ctx context.Context, record *domain.DecisionRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MockDecisionRepository) List(ctx context.Context, userID uuid.UUID, filter domain.DecisionFilter) ([]domain.DecisionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.DecisionRecord
	for _, r := range m.records {
		if r.UserID != userID {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

func (m *MockDecisionRepository) LatestByCategory(ctx context.Context, userID uuid.UUID, category string) (*domain.DecisionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var latest *domain.DecisionRecord
	for _, r := range m.records {
		if r.UserID != userID || r.Category != category {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	return latest, nil
}

func (m *MockDecisionRepository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var kept []*domain.DecisionRecord
	var pruned int64
	for _, r := range m.records {
		if r.Timestamp.Before(olderThan) {
			pruned++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return pruned, nil
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	profiles map[uuid.UUID]*domain.SleepProfile
	err      error
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		profiles: make(map[uuid.UUID]*domain.SleepProfile),
	}
}

func (m *MockProfileRepository) Replace(ctx context.Context, profile *domain.SleepProfile) error {
	if m.err != nil {
		return m.err
	}
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.SleepProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrNoProfile
	}
	return profile, nil
}

// MockPrescriptionRepository is a mock implementation of PrescriptionRepository
type MockPrescriptionRepository struct {
	prescriptions map[uuid.UUID][]*domain.Prescription
	err           error
}

func NewMockPrescriptionRepository() *MockPrescriptionRepository {
	return &MockPrescriptionRepository{
		prescriptions: make(map[uuid.UUID][]*domain.Prescription),
	}
}

func (m *MockPrescriptionRepository) Create(ctx context.Context, prescription *domain.Prescription) error {
	if m.err != nil {
		return m.err
	}
	prescription.CreatedAt = time.Now()
	m.prescriptions[prescription.UserID] = append(m.prescriptions[prescription.UserID], prescription)
	return nil
}

func (m *MockPrescriptionRepository) GetActive(ctx context.Context, userID uuid.UUID) (*domain.Prescription, error) {
	if m.err != nil {
		return nil, m.err
	}
	list := m.prescriptions[userID]
	if len(list) == 0 {
		return nil, domain.ErrNoPrescription
	}
	active := list[0]
	for _, p := range list[1:] {
		if p.Week > active.Week {
			active = p
		}
	}
	return active, nil
}

// MockForecastClient is a mock implementation of forecast.Client
type MockForecastClient struct {
	prediction *engine.Prediction
	err        error
}

func (m *MockForecastClient) IsEnabled() bool {
	return m.prediction != nil || m.err != nil
}

func (m *MockForecastClient) Predict(ctx context.Context, userID uuid.UUID) (*engine.Prediction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.prediction, nil
}

// MockCoachLLM is a mock implementation of llm.CoachLLM
type MockCoachLLM struct {
	message string
	err     error
	calls   int
}

func (m *MockCoachLLM) ComposeMessage(ctx context.Context, decision engine.Decision) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.message, nil
}

// Helper functions
func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
