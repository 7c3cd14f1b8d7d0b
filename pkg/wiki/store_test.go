package wiki

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/gmodts/pkg/util"
)

func openTestCache(t *testing.T) *DiskCache {
	t.Helper()
	c, err := OpenDiskCache(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDiskCache_PageRoundTripAndExpiry(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	page := Page{Title: "Entity:SetPos", Markup: "<function/>", Address: "Entity:SetPos"}
	require.NoError(t, c.PutPage(ctx, "/gmod/Entity:SetPos", page, now))

	got, ok, err := c.Page(ctx, "/gmod/Entity:SetPos", time.Hour, now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, page, got)

	_, ok, err = c.Page(ctx, "/gmod/Entity:SetPos", time.Hour, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "entry older than maxAge must be treated as a miss")

	_, ok, err = c.Page(ctx, "/gmod/Entity:SetPos", 0, now.Add(1000*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok, "zero maxAge never expires")

	page.Markup = "<function name=\"SetPos\"/>"
	require.NoError(t, c.PutPage(ctx, "/gmod/Entity:SetPos", page, now))
	got, _, err = c.Page(ctx, "/gmod/Entity:SetPos", 0, now)
	require.NoError(t, err)
	assert.Equal(t, page.Markup, got.Markup)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pages)
}

func TestDiskCache_Category(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, c.PutCategory(ctx, "enum", []string{"/gmod/Enums/DOCK", "/gmod/Enums/TEXT_ALIGN"}, now))

	paths, ok, err := c.Category(ctx, "enum", 0, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"/gmod/Enums/DOCK", "/gmod/Enums/TEXT_ALIGN"}, paths)

	require.NoError(t, c.Clear(ctx))
	_, ok, err = c.Category(ctx, "enum", 0, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedSource_ReadThroughAndOffline(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	static := NewStaticSource()
	static.AddPage("/gmod/Vector", Page{Title: "Vector", Address: "Vector"}, "class")
	upstream := &countingSource{StaticSource: static}

	online := NewCachedSource(upstream, c, CachedSourceOptions{Logger: util.Discard()})
	_, err := online.GetPage(ctx, "/gmod/Vector")
	require.NoError(t, err)
	_, err = online.GetPage(ctx, "/gmod/Vector")
	require.NoError(t, err)
	assert.Equal(t, int32(1), upstream.pageCalls.Load())

	_, err = online.GetPagesInCategory(ctx, "class")
	require.NoError(t, err)

	offline := NewCachedSource(nil, c, CachedSourceOptions{Offline: true})
	p, err := offline.GetPage(ctx, "/gmod/Vector")
	require.NoError(t, err)
	assert.Equal(t, "Vector", p.Title)

	paths, err := offline.GetPagesInCategory(ctx, "class")
	require.NoError(t, err)
	assert.Equal(t, []string{"/gmod/Vector"}, paths)

	_, err = offline.GetPage(ctx, "/gmod/Angle")
	assert.True(t, errors.Is(err, ErrOffline))
}
