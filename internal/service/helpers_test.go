package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/config"
	"github.com/MKhiriev/go-task-sync/internal/crypto"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/internal/vclock"
	"github.com/MKhiriev/go-task-sync/models"
)

// seqIDs hands out predictable ids: prefix-1, prefix-2, ...
type seqIDs struct {
	prefix string
	n      atomic.Int64
}

func newSeqIDs(prefix string) *seqIDs { return &seqIDs{prefix: prefix} }

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

// plainEncryptor "encrypts" with base64 so that tests can inspect payloads.
type plainEncryptor struct {
	locked atomic.Bool
}

const plainNonce = "plain-nonce"

func (e *plainEncryptor) IsInitialized() bool { return !e.locked.Load() }

func (e *plainEncryptor) Encrypt(plaintext []byte) (string, string, error) {
	if e.locked.Load() {
		return "", "", crypto.ErrNotInitialized
	}
	return base64.StdEncoding.EncodeToString(plaintext), plainNonce, nil
}

func (e *plainEncryptor) Decrypt(ciphertext, nonce string) ([]byte, error) {
	if e.locked.Load() {
		return nil, crypto.ErrNotInitialized
	}
	if nonce != plainNonce {
		return nil, crypto.ErrDecryptionFailed
	}
	plaintext, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, crypto.ErrInvalidEncoding
	}
	return plaintext, nil
}

func (e *plainEncryptor) Hash(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}

type storedTask struct {
	task    models.EncryptedTask
	seq     int64
	origin  string
	deleted bool
}

// fakeServer is an in-process sync server shared by several fakeClients. It
// accepts operations whose clock is not concurrent with the stored one,
// reports the others as conflicts, and serves every device the changes made
// by other devices since its last complete pull.
type fakeServer struct {
	mu    sync.Mutex
	seq   int64
	clock models.VectorClock
	tasks map[string]*storedTask
	seen  map[string]int64

	pushErrs   []error
	pullErrs   []error
	reject     map[string]models.RejectReason
	refreshErr error
	pingErr    error

	pushes    int
	pulls     int
	refreshes int

	now func() time.Time
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		clock:  models.VectorClock{},
		tasks:  make(map[string]*storedTask),
		seen:   make(map[string]int64),
		reject: make(map[string]models.RejectReason),
		now:    time.Now,
	}
}

func (s *fakeServer) failPush(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushErrs = append(s.pushErrs, errs...)
}

func (s *fakeServer) failPull(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pullErrs = append(s.pullErrs, errs...)
}

func (s *fakeServer) counts() (pushes, pulls, refreshes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushes, s.pulls, s.refreshes
}

func (s *fakeServer) stored(id string) (models.EncryptedTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tasks[id]
	if !ok || st.deleted {
		return models.EncryptedTask{}, false
	}
	return st.task, true
}

func popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (s *fakeServer) push(req models.PushRequest) (models.PushResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pushes++
	if err := popErr(&s.pushErrs); err != nil {
		return models.PushResponse{}, err
	}

	var resp models.PushResponse
	for _, op := range req.Operations {
		if reason, ok := s.reject[op.TaskID]; ok {
			resp.Rejected = append(resp.Rejected, models.RejectedOperation{TaskID: op.TaskID, Reason: reason})
			continue
		}

		cur, exists := s.tasks[op.TaskID]
		if exists && vclock.IsConcurrent(cur.task.VectorClock, op.VectorClock) {
			resp.Conflicts = append(resp.Conflicts, models.ConflictInfo{
				EntityID:    op.TaskID,
				LocalClock:  op.VectorClock.Clone(),
				RemoteClock: cur.task.VectorClock.Clone(),
			})
			continue
		}

		clock := op.VectorClock.Clone()
		if exists {
			clock = vclock.Merge(cur.task.VectorClock, op.VectorClock)
		}

		s.seq++
		s.tasks[op.TaskID] = &storedTask{
			seq:     s.seq,
			origin:  req.DeviceID,
			deleted: op.Type == models.OperationDelete,
			task: models.EncryptedTask{
				ID:            op.TaskID,
				EncryptedBlob: op.EncryptedBlob,
				Nonce:         op.Nonce,
				VectorClock:   clock,
				UpdatedAt:     s.now().UTC(),
				Checksum:      op.Checksum,
			},
		}
		s.clock = vclock.Merge(s.clock, op.VectorClock)
		resp.Accepted = append(resp.Accepted, op.TaskID)
	}

	resp.ServerVectorClock = s.clock.Clone()
	return resp, nil
}

func (s *fakeServer) pull(req models.PullRequest) (models.PullResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pulls++
	if err := popErr(&s.pullErrs); err != nil {
		return models.PullResponse{}, err
	}

	var changes []*storedTask
	for _, st := range s.tasks {
		if st.seq > s.seen[req.DeviceID] && st.origin != req.DeviceID {
			changes = append(changes, st)
		}
	}
	slices.SortFunc(changes, func(a, b *storedTask) int { return int(a.seq - b.seq) })

	offset := 0
	if req.Cursor != "" {
		offset, _ = strconv.Atoi(req.Cursor)
	}
	end := len(changes)
	if req.Limit > 0 {
		end = min(offset+req.Limit, len(changes))
	}

	resp := models.PullResponse{ServerVectorClock: s.clock.Clone()}
	for _, st := range changes[offset:end] {
		if st.deleted {
			resp.DeletedTaskIDs = append(resp.DeletedTaskIDs, st.task.ID)
			continue
		}
		resp.Tasks = append(resp.Tasks, st.task)
	}

	if end < len(changes) {
		resp.HasMore = true
		resp.NextCursor = strconv.Itoa(end)
	} else {
		s.seen[req.DeviceID] = s.seq
	}
	return resp, nil
}

func (s *fakeServer) refresh() (models.TokenRefreshResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshes++
	if s.refreshErr != nil {
		return models.TokenRefreshResponse{}, s.refreshErr
	}
	return models.TokenRefreshResponse{
		Token:     fmt.Sprintf("refreshed-%d", s.refreshes),
		ExpiresAt: s.now().Add(time.Hour).UTC(),
	}, nil
}

// fakeClient is one device's view of a fakeServer.
type fakeClient struct {
	server *fakeServer

	mu        sync.Mutex
	token     string
	serverURL string
}

var _ adapter.ServerAdapter = (*fakeClient)(nil)

func (c *fakeClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *fakeClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *fakeClient) SetServerURL(raw string) error {
	if raw == "::bad" {
		return adapter.ErrInvalidServerURL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverURL = raw
	return nil
}

func (c *fakeClient) Push(_ context.Context, req models.PushRequest) (models.PushResponse, error) {
	return c.server.push(req)
}

func (c *fakeClient) Pull(_ context.Context, req models.PullRequest) (models.PullResponse, error) {
	return c.server.pull(req)
}

func (c *fakeClient) RefreshToken(_ context.Context) (models.TokenRefreshResponse, error) {
	return c.server.refresh()
}

func (c *fakeClient) Ping(_ context.Context) error {
	c.server.mu.Lock()
	defer c.server.mu.Unlock()
	return c.server.pingErr
}

// harness wires the lower-level components over in-memory storages.
type harness struct {
	storages *store.ClientStorages
	ids      *seqIDs
	config   *ConfigStore
	queue    *OperationQueue
	log      *logger.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	storages := store.NewMemoryClientStorages()
	ids := newSeqIDs("id")
	log := logger.Nop()

	return &harness{
		storages: storages,
		ids:      ids,
		config:   NewConfigStore(storages.Config, ids, "test device", log),
		queue:    NewOperationQueue(storages.Operations, ids, log),
		log:      log,
	}
}

// enable turns sync on with a usable token and applies mutate, if any.
func (h *harness) enable(t *testing.T, mutate func(cfg *models.SyncConfig)) models.SyncConfig {
	t.Helper()

	cfg, err := h.config.Update(context.Background(), func(cfg *models.SyncConfig) {
		cfg.Enabled = true
		cfg.UserID = "user-1"
		cfg.Token = "token"
		if mutate != nil {
			mutate(cfg)
		}
	})
	require.NoError(t, err)
	return cfg
}

func (h *harness) loadConfig(t *testing.T) models.SyncConfig {
	t.Helper()
	cfg, err := h.config.Load(context.Background())
	require.NoError(t, err)
	return cfg
}

func (h *harness) pending(t *testing.T) []models.PendingOperation {
	t.Helper()
	ops, err := h.queue.GetPending(context.Background())
	require.NoError(t, err)
	return ops
}

// testDevice is a full SyncService wired to a fakeServer.
type testDevice struct {
	name     string
	storages *store.ClientStorages
	client   *fakeClient
	enc      *plainEncryptor
	service  *SyncService
}

func newTestDevice(t *testing.T, server *fakeServer, name string) *testDevice {
	t.Helper()

	storages := store.NewMemoryClientStorages()
	client := &fakeClient{server: server}
	enc := &plainEncryptor{}
	cfg := config.ClientConfig{
		App:     config.ClientApp{DeviceName: name},
		Adapter: config.ClientAdapter{PullPageSize: 2},
	}

	return &testDevice{
		name:     name,
		storages: storages,
		client:   client,
		enc:      enc,
		service:  NewSyncService(storages, client, enc, cfg, logger.Nop()),
	}
}

func (d *testDevice) enable(t *testing.T) models.SyncConfig {
	t.Helper()
	cfg, err := d.service.EnableSync(context.Background(), models.AuthCredentials{
		Token:  "token-" + d.name,
		UserID: "user-1",
		Email:  "user@example.com",
	})
	require.NoError(t, err)
	return cfg
}

func (d *testDevice) sync(t *testing.T) models.SyncResult {
	t.Helper()
	return d.service.engine.Sync(context.Background(), models.SyncPriorityUser)
}

func (d *testDevice) config(t *testing.T) models.SyncConfig {
	t.Helper()
	cfg, err := d.service.config.Load(context.Background())
	require.NoError(t, err)
	return cfg
}

func (d *testDevice) pending(t *testing.T) []models.PendingOperation {
	t.Helper()
	ops, err := d.service.queue.GetPending(context.Background())
	require.NoError(t, err)
	return ops
}

func (d *testDevice) task(t *testing.T, id string) models.Task {
	t.Helper()
	task, err := d.storages.Tasks.Get(context.Background(), id)
	require.NoError(t, err)
	return task
}

// setNow pins the clock used for task timestamps.
func (d *testDevice) setNow(now time.Time) {
	d.service.tasks.now = func() time.Time { return now }
}

func newTask(id, title string, updatedAt time.Time, clock models.VectorClock) models.Task {
	return models.Task{
		ID:          id,
		Title:       title,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		CreatedAt:   updatedAt,
		UpdatedAt:   updatedAt,
		VectorClock: clock,
	}
}
