package blobstore

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sourceCS = "DefaultEndpointsProtocol=https;AccountName=bronzeacct;AccountKey=a2V5LWJyb256ZQ==;EndpointSuffix=core.windows.net"
	targetCS = "DefaultEndpointsProtocol=https;AccountName=silveracct;AccountKey=a2V5LXNpbHZlcg==;EndpointSuffix=core.windows.net"
)

func TestMemoryStoreListBlobsPaginates(t *testing.T) {
	store, err := NewMemoryStore("bronzeacct", "a2V5")
	require.NoError(t, err)
	for _, name := range []string{"c.json", "a.json", "dir/", "b.json", "dir/d.json"} {
		store.Put("raw", name, []byte(name))
	}

	var pages [][]BlobItem
	err = store.ListBlobs(context.Background(), "raw", 2, func(page []BlobItem) error {
		pages = append(pages, page)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "a.json", pages[0][0].Name)
	assert.Equal(t, "b.json", pages[0][1].Name)
	assert.Equal(t, "dir/d.json", pages[2][0].Name)
	assert.Equal(t, int64(len("a.json")), pages[0][0].Size)
}

func TestMemoryStoreListBlobsStopsOnCallbackError(t *testing.T) {
	store, err := NewMemoryStore("bronzeacct", "a2V5")
	require.NoError(t, err)
	store.Put("raw", "a", []byte("1"))
	store.Put("raw", "b", []byte("2"))

	stop := errors.New("stop")
	calls := 0
	err = store.ListBlobs(context.Background(), "raw", 1, func(page []BlobItem) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)

	err = store.ListBlobs(context.Background(), "missing", 1, func(page []BlobItem) error { return nil })
	assert.Error(t, err)
}

func TestAccountReadSAS(t *testing.T) {
	store, err := NewMemoryStore("bronzeacct", "a2V5")
	require.NoError(t, err)

	expiry := time.Now().Add(10 * time.Minute)
	token, err := store.AccountReadSAS(expiry)
	require.NoError(t, err)

	query, err := url.ParseQuery(token)
	require.NoError(t, err)
	assert.Equal(t, "r", query.Get("sp"))
	assert.Equal(t, "o", query.Get("srt"))
	assert.Equal(t, "b", query.Get("ss"))
	assert.NotEmpty(t, query.Get("sig"))

	se, err := time.Parse(time.RFC3339, query.Get("se"))
	require.NoError(t, err)
	assert.WithinDuration(t, expiry, se, time.Second)
}

func TestMemoryAccountsCopyBetweenAccounts(t *testing.T) {
	accounts := NewMemoryAccounts()
	src, err := accounts.Add(sourceCS)
	require.NoError(t, err)
	_, err = accounts.Add(targetCS)
	require.NoError(t, err)

	src.Put("bronze", "factory=1/y=2022/m=06/d=24/sample.zip", []byte("payload"))

	target, err := accounts.Open(targetCS)
	require.NoError(t, err)

	token, err := src.AccountReadSAS(time.Now().Add(time.Minute))
	require.NoError(t, err)
	sourceURL := src.BlobURL("bronze", "factory=1/y=2022/m=06/d=24/sample.zip") + "?" + token

	info, err := target.StartCopyFromURL(context.Background(), "silver", "factory=1/y=2022/m=06/d=24/sample.zip", sourceURL)
	require.NoError(t, err)
	assert.Equal(t, "success", info.Status)
	assert.NotEmpty(t, info.CopyID)

	data, err := target.Download(context.Background(), "silver", "factory=1/y=2022/m=06/d=24/sample.zip", 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	status, err := target.CopyStatus(context.Background(), "silver", "factory=1/y=2022/m=06/d=24/sample.zip")
	require.NoError(t, err)
	assert.Equal(t, info.CopyID, status.CopyID)
}

func TestMemoryStoreCopyWithExpiredToken(t *testing.T) {
	accounts := NewMemoryAccounts()
	src, err := accounts.Add(sourceCS)
	require.NoError(t, err)
	dst, err := accounts.Add(targetCS)
	require.NoError(t, err)
	src.Put("bronze", "a.json", []byte("{}"))

	token, err := src.AccountReadSAS(time.Now().Add(-time.Minute))
	require.NoError(t, err)

	info, err := dst.StartCopyFromURL(context.Background(), "silver", "a.json", src.BlobURL("bronze", "a.json")+"?"+token)
	require.NoError(t, err)
	assert.Equal(t, "failed", info.Status)
	_, found := dst.Get("silver", "a.json")
	assert.False(t, found)
}

func TestMemoryStoreDownloadLimit(t *testing.T) {
	store, err := NewMemoryStore("bronzeacct", "a2V5")
	require.NoError(t, err)
	store.Put("raw", "big", make([]byte, 16))

	_, err = store.Download(context.Background(), "raw", "big", 8)
	assert.ErrorIs(t, err, ErrSourceTooLarge)

	_, err = store.Download(context.Background(), "raw", "missing", 8)
	assert.ErrorIs(t, err, ErrBlobNotFound)

	data, err := store.Download(context.Background(), "raw", "big", 16)
	require.NoError(t, err)
	assert.Len(t, data, 16)
}

func TestMemoryAccountsOpenUnknown(t *testing.T) {
	accounts := NewMemoryAccounts()
	_, err := accounts.Open(sourceCS)
	assert.ErrorIs(t, err, ErrMalformedConnectionString)

	_, err = accounts.Open("garbage")
	assert.ErrorIs(t, err, ErrMalformedConnectionString)
}
