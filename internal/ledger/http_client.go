package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MRudenko/go-budget-sync/internal/logger"
	"github.com/MRudenko/go-budget-sync/models"
)

const (
	budgetFileName = "db.sqlite"

	// MetadataFileName is the descriptor written next to every cached
	// budget database. Other packages scan cache directories by it.
	MetadataFileName = "metadata.json"
)

type HTTPClientConfig struct {
	Timeout time.Duration
}

type httpLedgerClient struct {
	cfg      HTTPClientConfig
	keychain *keyChain
	log      *logger.Logger

	client  *resty.Client
	token   string
	dataDir string
	budget  *loadedBudget
}

// loadedBudget is the one budget currently open for budget-level operations.
type loadedBudget struct {
	fileID  string
	groupID string
	store   *budgetStore
}

// NewHTTPClient constructs the HTTP/REST implementation of [Client]. The
// returned client is idle until Init is called.
func NewHTTPClient(cfg HTTPClientConfig, log *logger.Logger) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &httpLedgerClient{
		cfg:      cfg,
		keychain: newKeyChain(),
		log:      log,
	}
}

func (h *httpLedgerClient) Init(ctx context.Context, dataDir, serverURL, password string) error {
	cli := resty.New().
		SetBaseURL(strings.TrimRight(serverURL, "/")).
		SetTimeout(h.cfg.Timeout)

	resp, err := cli.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.LoginRequest{Password: password}).
		Post("/api/auth/login")
	if err != nil {
		return fmt.Errorf("%w: login request: %v", ErrConnection, err)
	}
	if !isSuccess(resp) {
		return fmt.Errorf("%w: login rejected: %s", ErrConnection, httpErrorDetail(resp))
	}

	var loginResp models.LoginResponse
	if err = json.Unmarshal(resp.Body(), &loginResp); err != nil {
		return fmt.Errorf("%w: decode login response: %v", ErrConnection, err)
	}
	if loginResp.Data.Token == "" {
		return fmt.Errorf("%w: login response carried no token", ErrConnection)
	}

	h.client = cli
	h.token = loginResp.Data.Token
	h.dataDir = dataDir
	return nil
}

func (h *httpLedgerClient) Shutdown(_ context.Context) error {
	var closeErr error
	if h.budget != nil {
		closeErr = h.budget.store.Close()
		h.budget = nil
	}
	h.token = ""
	h.client = nil

	if closeErr != nil {
		return fmt.Errorf("close budget store: %w", closeErr)
	}
	return nil
}

func (h *httpLedgerClient) DownloadBudget(ctx context.Context, req models.DownloadBudgetRequest) error {
	if h.client == nil {
		return ErrNoSession
	}

	info, err := h.fetchFileInfo(ctx, req.SyncID)
	if err != nil {
		return err
	}

	var fileKey []byte
	if info.EncryptMeta != nil {
		if fileKey, err = h.verifyEncryptionPassword(info, req.Password); err != nil {
			return err
		}
	}

	blob, err := h.fetchBudgetFile(ctx, req.SyncID)
	if err != nil {
		return err
	}
	if fileKey != nil {
		if blob, err = h.keychain.Open(fileKey, blob); err != nil {
			return fmt.Errorf("%w: decrypt budget file: %v", ErrEncryptionKey, err)
		}
	}

	if err = h.writeBudgetDir(info, req.SyncID, blob); err != nil {
		return err
	}

	return h.openBudget(info.FileID, req.SyncID)
}

func (h *httpLedgerClient) LoadBudget(_ context.Context, localID string) error {
	if h.client == nil {
		return ErrNoSession
	}

	metaPath := filepath.Join(h.dataDir, localID, MetadataFileName)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBudgetNotFound, localID)
		}
		return fmt.Errorf("read budget metadata %s: %w", localID, err)
	}

	var meta models.BudgetMetadata
	if err = json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("decode budget metadata %s: %w", localID, err)
	}

	return h.openBudget(localID, meta.GroupID)
}

func (h *httpLedgerClient) RunBankSync(ctx context.Context) error {
	if h.budget == nil {
		return ErrNoBudgetLoaded
	}

	resp, err := h.authedRequest(ctx).Post("/api/bank-sync/" + h.budget.fileID)
	if err != nil {
		return fmt.Errorf("bank sync request: %w", err)
	}
	if !isSuccess(resp) {
		return fmt.Errorf("bank sync: %s", httpErrorDetail(resp))
	}

	var bankResp models.BankSyncResponse
	if err = json.Unmarshal(resp.Body(), &bankResp); err != nil {
		return fmt.Errorf("decode bank sync response: %w", err)
	}

	if err = h.budget.store.ApplyBankSync(ctx, bankResp); err != nil {
		return fmt.Errorf("apply bank sync: %w", err)
	}

	h.log.Debug().
		Str("fileId", h.budget.fileID).
		Int("transactions", len(bankResp.Data.Transactions)).
		Int("balances", len(bankResp.Data.Balances)).
		Msg("bank sync applied")
	return nil
}

func (h *httpLedgerClient) Sync(ctx context.Context) error {
	if h.budget == nil {
		return ErrNoBudgetLoaded
	}

	messages, err := h.budget.store.UnsentMessages(ctx)
	if err != nil {
		return fmt.Errorf("collect unsent messages: %w", err)
	}

	pushReq := models.PushRequest{
		FileID:   h.budget.fileID,
		GroupID:  h.budget.groupID,
		Messages: messages,
	}
	var pushResp models.PushResponse
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(pushReq).
		SetResult(&pushResp).
		Post("/api/sync/push")
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	if !isSuccess(resp) {
		return fmt.Errorf("push: %s", httpErrorDetail(resp))
	}

	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	if err = h.budget.store.MarkMessagesSent(ctx, ids); err != nil {
		return fmt.Errorf("mark messages sent: %w", err)
	}

	h.log.Debug().
		Str("fileId", h.budget.fileID).
		Int("pushed", len(ids)).
		Int("merged", pushResp.Data.MergedCount).
		Msg("local edits pushed")
	return nil
}

func (h *httpLedgerClient) Accounts(ctx context.Context) ([]models.Account, error) {
	if h.budget == nil {
		return nil, ErrNoBudgetLoaded
	}
	return h.budget.store.Accounts(ctx)
}

func (h *httpLedgerClient) ApplyUpdate(ctx context.Context, table, id string, fields map[string]any) error {
	if h.budget == nil {
		return ErrNoBudgetLoaded
	}
	return h.budget.store.ApplyUpdate(ctx, table, id, fields)
}

func (h *httpLedgerClient) Token() string {
	return h.token
}

func (h *httpLedgerClient) fetchFileInfo(ctx context.Context, syncID string) (models.BudgetFileInfo, error) {
	resp, err := h.authedRequest(ctx).Get("/api/sync/files/" + syncID)
	if err != nil {
		return models.BudgetFileInfo{}, fmt.Errorf("file info request: %w", err)
	}
	if !isSuccess(resp) {
		return models.BudgetFileInfo{}, fmt.Errorf("file info for %s: %s", syncID, httpErrorDetail(resp))
	}

	var infoResp struct {
		Data models.BudgetFileInfo `json:"data"`
	}
	if err = json.Unmarshal(resp.Body(), &infoResp); err != nil {
		return models.BudgetFileInfo{}, fmt.Errorf("decode file info: %w", err)
	}

	return infoResp.Data, nil
}

// verifyEncryptionPassword derives the budget file key from the request
// password and proves it against the server-stored test blob before any
// budget data is downloaded. A nil password on an encrypted budget is a
// distinct failure from a wrong one only in the log message; both surface
// as ErrEncryptionKey.
func (h *httpLedgerClient) verifyEncryptionPassword(info models.BudgetFileInfo, password *string) ([]byte, error) {
	if password == nil {
		return nil, fmt.Errorf("%w: budget %s is encrypted but no password configured", ErrEncryptionKey, info.GroupID)
	}

	salt, err := base64.StdEncoding.DecodeString(info.EncryptMeta.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: decode salt: %v", ErrEncryptionKey, err)
	}
	testBlob, err := base64.StdEncoding.DecodeString(info.EncryptMeta.TestContent)
	if err != nil {
		return nil, fmt.Errorf("%w: decode test blob: %v", ErrEncryptionKey, err)
	}

	fileKey := h.keychain.DeriveKey(*password, salt)
	if _, err = h.keychain.Open(fileKey, testBlob); err != nil {
		return nil, fmt.Errorf("%w: password check failed for budget %s", ErrEncryptionKey, info.GroupID)
	}

	return fileKey, nil
}

func (h *httpLedgerClient) fetchBudgetFile(ctx context.Context, syncID string) ([]byte, error) {
	resp, err := h.authedRequest(ctx).Get("/api/sync/files/" + syncID + "/download")
	if err != nil {
		return nil, fmt.Errorf("budget download request: %w", err)
	}
	if !isSuccess(resp) {
		return nil, fmt.Errorf("budget download for %s: %s", syncID, httpErrorDetail(resp))
	}
	return resp.Body(), nil
}

func (h *httpLedgerClient) writeBudgetDir(info models.BudgetFileInfo, syncID string, blob []byte) error {
	dir := filepath.Join(h.dataDir, info.FileID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create budget dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, budgetFileName), blob, 0o600); err != nil {
		return fmt.Errorf("write budget file: %w", err)
	}

	meta := models.BudgetMetadata{ID: info.FileID, GroupID: syncID, Name: info.Name}
	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode budget metadata: %w", err)
	}
	if err = os.WriteFile(filepath.Join(dir, MetadataFileName), payload, 0o600); err != nil {
		return fmt.Errorf("write budget metadata: %w", err)
	}

	return nil
}

// openBudget closes any previously loaded budget and opens the store under
// the given cache directory.
func (h *httpLedgerClient) openBudget(fileID, groupID string) error {
	if h.budget != nil {
		if err := h.budget.store.Close(); err != nil {
			h.log.Warn().Err(err).Str("fileId", h.budget.fileID).Msg("close previous budget store")
		}
		h.budget = nil
	}

	store, err := newBudgetStore(filepath.Join(h.dataDir, fileID, budgetFileName))
	if err != nil {
		return fmt.Errorf("open budget %s: %w", fileID, err)
	}

	h.budget = &loadedBudget{fileID: fileID, groupID: groupID, store: store}
	return nil
}

func (h *httpLedgerClient) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.token != "" {
		req.SetHeader("Authorization", "Bearer "+h.token)
	}
	return req
}

func isSuccess(resp *resty.Response) bool {
	return resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices
}

func httpErrorDetail(resp *resty.Response) string {
	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Sprintf("http %d: %s", resp.StatusCode(), body)
}
