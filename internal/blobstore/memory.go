package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// CopyCall фиксирует один вызов StartCopyFromURL в MemoryStore
type CopyCall struct {
	Container string
	Name      string
	SourceURL string
	At        time.Time
}

// MemoryStore реализует Store в памяти. Используется в тестах и для локального запуска.
type MemoryStore struct {
	mu         sync.RWMutex
	account    string
	credential *azblob.SharedKeyCredential
	containers map[string]map[string][]byte
	copies     map[string]CopyInfo
	calls      []CopyCall
	resolve    func(account string) *MemoryStore

	// UploadHook, если задан, вызывается перед каждой записью; ошибка прерывает запись
	UploadHook func(container, name string) error
}

// NewMemoryStore создает пустое хранилище для аккаунта с заданным ключом
func NewMemoryStore(account, key string) (*MemoryStore, error) {
	credential, err := azblob.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedConnectionString, err)
	}
	return &MemoryStore{
		account:    account,
		credential: credential,
		containers: make(map[string]map[string][]byte),
		copies:     make(map[string]CopyInfo),
	}, nil
}

// Put кладет блоб в контейнер, создавая контейнер при необходимости
func (m *MemoryStore) Put(container, name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(container, name, data)
}

// Get возвращает содержимое блоба
func (m *MemoryStore) Get(container, name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.containers[container][name]
	return data, ok
}

// Names возвращает отсортированный список блобов контейнера
func (m *MemoryStore) Names(container string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.containers[container]))
	for name := range m.containers[container] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CopyCalls возвращает копию списка вызовов StartCopyFromURL
func (m *MemoryStore) CopyCalls() []CopyCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.calls)
}

// AccountName возвращает имя аккаунта
func (m *MemoryStore) AccountName() string {
	return m.account
}

// ListBlobs отдает блобы в лексикографическом порядке страницами по pageSize
func (m *MemoryStore) ListBlobs(ctx context.Context, container string, pageSize int32, fn func(page []BlobItem) error) error {
	m.mu.RLock()
	blobs, ok := m.containers[container]
	items := make([]BlobItem, 0, len(blobs))
	for name, data := range blobs {
		items = append(items, BlobItem{Name: name, Size: int64(len(data))})
	}
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("list blobs in %s: container not found", container)
	}
	slices.SortFunc(items, func(a, b BlobItem) int { return strings.Compare(a.Name, b.Name) })

	size := int(pageSize)
	if size <= 0 {
		size = len(items)
	}
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, len(items))
		if err := fn(items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// AccountReadSAS подписывает настоящий SAS тем же способом, что и AzureStore
func (m *MemoryStore) AccountReadSAS(expiry time.Time) (string, error) {
	return signAccountReadSAS(m.credential, expiry)
}

// BlobURL возвращает адрес блоба в формате публичного endpoint Azure
func (m *MemoryStore) BlobURL(container, name string) string {
	return fmt.Sprintf("https://%s.blob.%s/%s/%s", m.account, defaultEndpointSuffix, container, url.PathEscape(name))
}

// StartCopyFromURL копирует данные, если источник известен через MemoryAccounts.
// Просроченный токен дает статус failed, неизвестный источник - pending.
func (m *MemoryStore) StartCopyFromURL(ctx context.Context, container, name, sourceURL string) (CopyInfo, error) {
	if err := ctx.Err(); err != nil {
		return CopyInfo{}, err
	}

	now := time.Now()
	info := CopyInfo{CopyID: fmt.Sprintf("copy-%d", now.UnixNano()), Status: "pending"}

	data, status := m.fetchSource(sourceURL, now)
	if status != "" {
		info.Status = status
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CopyCall{Container: container, Name: name, SourceURL: sourceURL, At: now})
	if info.Status == "success" {
		m.putLocked(container, name, data)
	}
	m.copies[container+"/"+name] = info
	return info, nil
}

// Download возвращает содержимое блоба
func (m *MemoryStore) Download(ctx context.Context, container, name string, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := m.Get(container, name)
	if !ok {
		return nil, fmt.Errorf("download %s/%s: %w", container, name, ErrBlobNotFound)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, limit)
	}
	return slices.Clone(data), nil
}

// Upload сохраняет блоб
func (m *MemoryStore) Upload(ctx context.Context, container, name string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.UploadHook != nil {
		if err := m.UploadHook(container, name); err != nil {
			return fmt.Errorf("upload %s/%s: %w", container, name, err)
		}
	}
	m.Put(container, name, slices.Clone(data))
	return nil
}

// CopyStatus возвращает статус, зафиксированный при запуске копирования
func (m *MemoryStore) CopyStatus(ctx context.Context, container, name string) (CopyInfo, error) {
	if err := ctx.Err(); err != nil {
		return CopyInfo{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if info, ok := m.copies[container+"/"+name]; ok {
		return info, nil
	}
	if _, ok := m.containers[container][name]; ok {
		return CopyInfo{}, nil
	}
	return CopyInfo{}, fmt.Errorf("properties %s/%s: %w", container, name, ErrBlobNotFound)
}

// fetchSource находит исходный блоб по адресу и проверяет срок действия токена
func (m *MemoryStore) fetchSource(sourceURL string, now time.Time) ([]byte, string) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, "failed"
	}
	if expiry, err := time.Parse(time.RFC3339, u.Query().Get("se")); err != nil || !now.Before(expiry) {
		return nil, "failed"
	}
	if m.resolve == nil {
		return nil, ""
	}

	account, _, _ := strings.Cut(u.Host, ".")
	source := m.resolve(account)
	if source == nil {
		return nil, ""
	}
	container, name, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok {
		return nil, "failed"
	}
	data, found := source.Get(container, name)
	if !found {
		return nil, "failed"
	}
	return slices.Clone(data), "success"
}

func (m *MemoryStore) putLocked(container, name string, data []byte) {
	blobs, ok := m.containers[container]
	if !ok {
		blobs = make(map[string][]byte)
		m.containers[container] = blobs
	}
	blobs[name] = data
}

// MemoryAccounts связывает строки подключения с хранилищами в памяти
type MemoryAccounts struct {
	mu     sync.RWMutex
	byCS   map[string]*MemoryStore
	byName map[string]*MemoryStore
}

// NewMemoryAccounts создает пустой реестр аккаунтов
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		byCS:   make(map[string]*MemoryStore),
		byName: make(map[string]*MemoryStore),
	}
}

// Add регистрирует аккаунт, описанный строкой подключения
func (a *MemoryAccounts) Add(connectionString string) (*MemoryStore, error) {
	parsed, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}
	store, err := NewMemoryStore(parsed.AccountName(), parsed.AccountKey())
	if err != nil {
		return nil, err
	}
	store.resolve = a.lookup

	a.mu.Lock()
	defer a.mu.Unlock()
	a.byCS[connectionString] = store
	a.byName[store.account] = store
	return store, nil
}

// Open реализует Opener для зарегистрированных аккаунтов
func (a *MemoryAccounts) Open(connectionString string) (Store, error) {
	if _, err := ParseConnectionString(connectionString); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	store, ok := a.byCS[connectionString]
	if !ok {
		return nil, fmt.Errorf("%w: unknown account", ErrMalformedConnectionString)
	}
	return store, nil
}

func (a *MemoryAccounts) lookup(account string) *MemoryStore {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.byName[account]
}
