package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/giapha/core/internal/adapters/repository"
	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/domain/family"
	"github.com/giapha/core/internal/infrastructure/config"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/infrastructure/metrics"
	"github.com/giapha/core/internal/ports"
	"github.com/giapha/core/internal/treeview"
)

var fixedNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

// fakeRemote serves canned bodies per locator. A locator listed in gates
// blocks until its channel is closed.
type fakeRemote struct {
	mu      sync.Mutex
	bodies  map[string]string
	gates   map[string]chan struct{}
	started chan string
	calls   int
}

func (f *fakeRemote) Fetch(ctx context.Context, locator string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	body, ok := f.bodies[locator]
	gate := f.gates[locator]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- locator
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, errors.New("unreachable")
	}
	return []byte(body), nil
}

// failingStore fails every call.
type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("disk full") }
func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk gone")
}
func (failingStore) Ping(context.Context) error { return errors.New("down") }
func (failingStore) Driver() string             { return "failing" }
func (failingStore) Close() error               { return nil }

type fixture struct {
	store   ports.BlobStore
	remote  *fakeRemote
	gateway *Gateway
	site    *SiteService
	family  *FamilyService
	content *ContentService
	sync    *SyncService
	export  *ExportService
	views   *ViewService
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	m := metrics.New()
	f := &fixture{
		store:   repository.NewMemoryStore(),
		remote:  &fakeRemote{bodies: map[string]string{}, gates: map[string]chan struct{}{}},
		metrics: m,
	}
	f.gateway = NewGateway(f.store, f.remote, config.StorageConfig{}, log)
	f.site = NewSiteService(f.gateway, log)
	f.site.now = func() time.Time { return fixedNow }
	f.site.Load(context.Background())
	f.family = NewFamilyService(f.site, log, m)
	f.content = NewContentService(f.site, log)
	f.content.now = func() time.Time { return fixedNow }
	f.sync = NewSyncService(f.site, f.gateway, config.RemoteConfig{URL: config.DefaultCloudLink}, log, m)
	f.export = NewExportService(f.site, treeview.DefaultOptions(), log, m)
	f.export.now = func() time.Time { return fixedNow }
	f.views = NewViewService(f.site, f.export, treeview.DefaultOptions(), config.ViewsConfig{MaxSessions: 2, TTL: time.Minute}, log, m)
	return f
}

func (f *fixture) stored(t *testing.T) *entities.AppData {
	t.Helper()
	b, err := f.store.Get(context.Background(), "giapha_le_data")
	require.NoError(t, err)
	var data entities.AppData
	require.NoError(t, json.Unmarshal(b, &data))
	return &data
}

func remoteDoc(clan string) string {
	return `{"familyTree":{"id":"r","name":"Founder","generation":1,"isMale":true,"spouseName":"Bà Tổ",` +
		`"children":[{"id":"c","name":"Child","generation":2,"isMale":true}]},` +
		`"events":[{"id":"gio-r","title":"leaked","solarDate":"","type":"giỗ"}],"clanName":"` + clan + `"}`
}

func TestGatewayBestEffort(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	t.Run("missing and malformed data load as nil", func(t *testing.T) {
		store := repository.NewMemoryStore()
		gw := NewGateway(store, nil, config.StorageConfig{}, log)
		assert.Nil(t, gw.LoadLocal(ctx))

		require.NoError(t, store.Put(ctx, "giapha_le_data", []byte("{not json")))
		assert.Nil(t, gw.LoadLocal(ctx))

		require.NoError(t, store.Put(ctx, "giapha_le_data", []byte(`{"news":[]}`)))
		assert.Nil(t, gw.LoadLocal(ctx), "a blob without a tree is unusable")
	})

	t.Run("storage failures are swallowed", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		observed := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
		gw := NewGateway(failingStore{}, nil, config.StorageConfig{}, observed)
		assert.False(t, gw.SaveLocal(ctx, entities.SeedAppData(fixedNow)))
		assert.Nil(t, gw.LoadLocal(ctx))
		assert.Equal(t, "", gw.LoadCloudLink(ctx))
		assert.False(t, gw.SaveCloudLink(ctx, "https://example.com"))

		entries := logs.All()
		require.Len(t, entries, 4)
		for _, e := range entries {
			assert.Equal(t, "gateway", e.ContextMap()["component"], e.Message)
			assert.NotEmpty(t, e.ContextMap()["error"], e.Message)
		}
	})

	t.Run("remote is normalised on load", func(t *testing.T) {
		remote := &fakeRemote{bodies: map[string]string{"doc": remoteDoc("Họ Lê")}}
		gw := NewGateway(repository.NewMemoryStore(), remote, config.StorageConfig{}, log)

		assert.Nil(t, gw.FetchRemote(ctx, ""))
		assert.Nil(t, gw.FetchRemote(ctx, "missing"))

		data := gw.FetchRemote(ctx, "doc")
		require.NotNil(t, data)
		require.Len(t, data.FamilyTree.Spouses, 1)
		assert.Equal(t, "Bà Tổ", data.FamilyTree.Spouses[0].Name)
		assert.Empty(t, data.Events, "derived anniversaries are never loaded")
		assert.NotNil(t, data.News)
		assert.NotNil(t, data.Regulations)
	})

	t.Run("cloud link round trip", func(t *testing.T) {
		store := repository.NewMemoryStore()
		gw := NewGateway(store, nil, config.StorageConfig{}, log)
		assert.Equal(t, "", gw.LoadCloudLink(ctx))
		assert.True(t, gw.SaveCloudLink(ctx, "https://example.com/doc"))
		assert.Equal(t, "https://example.com/doc", gw.LoadCloudLink(ctx))

		require.NoError(t, store.Put(ctx, "cloud_data_link", []byte("https://raw.example.com\n")))
		assert.Equal(t, "https://raw.example.com", gw.LoadCloudLink(ctx))
	})
}

func TestSiteServiceLoad(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()
	store := repository.NewMemoryStore()
	gw := NewGateway(store, nil, config.StorageConfig{}, log)

	site := NewSiteService(gw, log)
	assert.Equal(t, SourceSeed, site.Load(ctx))
	assert.Equal(t, entities.SeedClanName, site.Data().ClanName)

	seeded, err := site.Seed(ctx, false)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = site.Seed(ctx, false)
	require.NoError(t, err)
	assert.False(t, seeded, "an existing blob is kept without force")

	other := NewSiteService(gw, log)
	assert.Equal(t, SourceLocal, other.Load(ctx))
	assert.Equal(t, site.Data().LastUpdated, other.Data().LastUpdated)
}

func TestSiteServiceUpdateStampsAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.site.Data()

	later := fixedNow.Add(time.Hour)
	f.site.now = func() time.Time { return later }
	data, err := f.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		cp.ClanName = "Họ Lê Việt"
		return cp, nil
	})
	require.NoError(t, err)
	assert.Equal(t, later.Format(time.RFC3339Nano), data.LastUpdated)
	assert.Equal(t, entities.SeedClanName, before.ClanName, "earlier snapshots are untouched")
	assert.Equal(t, "Họ Lê Việt", f.stored(t).ClanName)

	_, err = f.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		cp.ClanName = "discarded"
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, "Họ Lê Việt", f.site.Data().ClanName)
}

func TestFamilyServiceScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.family.AddChild(ctx, "m-3-3")
	require.NoError(t, err)
	assert.Equal(t, 4, added.Child.Generation)
	assert.Equal(t, entities.NewMemberName, added.Child.Name)
	assert.True(t, family.Contains(f.family.Tree(), added.Child.ID))

	_, err = f.family.AddChild(ctx, "nobody")
	assert.ErrorIs(t, err, entities.ErrMemberNotFound)

	updated, err := f.family.UpdateMember(ctx, added.Child.ID, ports.UpdateMemberRequest{
		Name:    "Lê Văn Khang",
		IsMale:  true,
		Spouses: []ports.SpouseRequest{{Name: "Phạm Thị Hoa"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Generation, "generation is kept from the stored node")
	require.Len(t, updated.Spouses, 1)
	assert.NotEmpty(t, updated.Spouses[0].ID)
	assert.Equal(t, "Lê Văn Khang", family.Find(f.family.Tree(), added.Child.ID).Name)

	_, err = f.family.UpdateMember(ctx, "nobody", ports.UpdateMemberRequest{Name: "x"})
	assert.ErrorIs(t, err, entities.ErrMemberNotFound)

	err = f.family.DeleteMember(ctx, "root")
	assert.ErrorIs(t, err, entities.ErrProtectedRoot)
	assert.Equal(t, 7, family.Count(f.family.Tree()))

	require.NoError(t, f.family.DeleteMember(ctx, "m-2-2"))
	for _, id := range []string{"m-2-2", "m-3-3", added.Child.ID} {
		assert.False(t, family.Contains(f.family.Tree(), id), id)
	}
	assert.Equal(t, 4, family.Count(f.stored(t).FamilyTree))

	assert.ErrorIs(t, f.family.DeleteMember(ctx, "m-2-2"), entities.ErrMemberNotFound)
}

func TestFamilyServiceUpdateClearsLegacySpouse(t *testing.T) {
	f := newFixture(t)

	m, err := f.family.GetMember("m-2-2")
	require.NoError(t, err)
	require.Len(t, m.Spouses, 1)
	assert.Equal(t, "Trần Thị Mai", m.Spouses[0].Name)

	req := ports.UpdateMemberRequest{Name: m.Name, IsMale: m.IsMale}
	for _, sp := range m.Spouses {
		req.Spouses = append(req.Spouses, ports.SpouseRequest{ID: sp.ID, Name: sp.Name})
	}
	updated, err := f.family.UpdateMember(context.Background(), "m-2-2", req)
	require.NoError(t, err)
	assert.Empty(t, updated.SpouseName)
	assert.Len(t, family.EffectiveSpouses(updated), 1, "the legacy spouse is not duplicated")
	assert.Len(t, updated.Children, 1, "children are kept")

	_, err = f.family.GetMember("nobody")
	assert.ErrorIs(t, err, entities.ErrMemberNotFound)
}

func TestContentServiceNews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	count := len(f.content.News())

	item, err := f.content.UpsertNews(ctx, ports.NewsRequest{Title: "Lễ khánh thành nhà thờ"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "2025-01-10", item.Date)
	require.Len(t, f.content.News(), count+1)
	assert.Equal(t, item.ID, f.content.News()[0].ID, "new items go first")

	_, err = f.content.UpsertNews(ctx, ports.NewsRequest{ID: item.ID, Title: "Đã sửa", Date: "2025-01-11"})
	require.NoError(t, err)
	require.Len(t, f.content.News(), count+1)
	assert.Equal(t, "Đã sửa", f.content.News()[0].Title)

	require.NoError(t, f.content.DeleteNews(ctx, item.ID))
	assert.Len(t, f.content.News(), count)
	assert.ErrorIs(t, f.content.DeleteNews(ctx, item.ID), entities.ErrNewsNotFound)
}

func TestContentServiceEventsAndCalendar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.AddEvent(ctx, ports.EventRequest{Title: "x", Type: "party"})
	assert.ErrorIs(t, err, entities.ErrInvalidEvent)

	today, err := f.content.AddEvent(ctx, ports.EventRequest{Title: "Tảo mộ", SolarDate: "2025-01-10", Type: entities.EventTypeOther})
	require.NoError(t, err)
	soon, err := f.content.AddEvent(ctx, ports.EventRequest{Title: "Khuyến học", SolarDate: "2025-01-20", Type: entities.EventTypeGathering})
	require.NoError(t, err)
	_, err = f.content.AddEvent(ctx, ports.EventRequest{Title: "Đã qua", SolarDate: "2024-12-01", Type: entities.EventTypeOther})
	require.NoError(t, err)

	cal := f.content.Calendar()
	require.Len(t, cal.Today, 1)
	assert.Equal(t, today.ID, cal.Today[0].ID)
	require.Len(t, cal.Upcoming, 2)
	assert.Equal(t, soon.ID, cal.Upcoming[0].ID)
	assert.Equal(t, "e1", cal.Upcoming[1].ID)

	derived := 0
	for _, e := range cal.All {
		if e.Derived {
			derived++
		}
	}
	assert.Equal(t, len(family.DeathAnniversaries(f.site.Tree())), derived)

	assert.ErrorIs(t, f.content.DeleteEvent(ctx, "gio-root"), entities.ErrDerivedEvent)
	require.NoError(t, f.content.DeleteEvent(ctx, soon.ID))
	assert.ErrorIs(t, f.content.DeleteEvent(ctx, soon.ID), entities.ErrEventNotFound)
}

func TestContentServicePatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := entities.Theme("neon")
	_, err := f.content.PatchContent(ctx, ports.ContentPatch{Theme: &bad})
	assert.ErrorIs(t, err, entities.ErrInvalidTheme)

	addr := "Thôn Đông, xã Quan Sơn"
	regs := []string{"Kính trên nhường dưới"}
	theme := entities.ThemeClassic
	data, err := f.content.PatchContent(ctx, ports.ContentPatch{Address: &addr, Regulations: &regs, Theme: &theme})
	require.NoError(t, err)
	assert.Equal(t, addr, data.Address)
	assert.Equal(t, regs, data.Regulations)
	assert.Equal(t, entities.ThemeClassic, data.Theme)
	assert.Equal(t, entities.SeedClanName, data.ClanName, "absent fields are left alone")

	regs[0] = "changed after the call"
	assert.Equal(t, "Kính trên nhường dưới", f.site.Data().Regulations[0])
}

func TestSyncService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	settings := f.sync.Settings(ctx)
	assert.True(t, settings.IsDefault)
	assert.Equal(t, config.DefaultCloudLink, settings.URL)

	_, err := f.sync.Sync(ctx, "")
	assert.ErrorIs(t, err, entities.ErrNoRemoteData)
	assert.Equal(t, entities.SeedClanName, f.site.Data().ClanName, "state is untouched on failure")

	f.remote.bodies["https://example.com/doc"] = remoteDoc("Họ Lê Remote")
	settings, err = f.sync.SetLink(ctx, " https://example.com/doc ")
	require.NoError(t, err)
	assert.False(t, settings.IsDefault)
	assert.Equal(t, "https://example.com/doc", f.sync.Settings(ctx).URL)

	res, err := f.sync.Sync(ctx, "")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 2, res.Members)
	assert.Equal(t, "Họ Lê Remote", f.site.Data().ClanName)
	assert.Equal(t, "Họ Lê Remote", f.stored(t).ClanName)
}

func TestSyncServiceDiscardsStaleResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gate := make(chan struct{})
	f.remote.bodies["slow"] = remoteDoc("slow")
	f.remote.bodies["fast"] = remoteDoc("fast")
	f.remote.gates["slow"] = gate
	f.remote.started = make(chan string, 2)

	type outcome struct {
		res *ports.SyncResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := f.sync.Sync(ctx, "slow")
		done <- outcome{res, err}
	}()
	require.Equal(t, "slow", <-f.remote.started)

	res, err := f.sync.Sync(ctx, "fast")
	require.NoError(t, err)
	<-f.remote.started
	assert.True(t, res.Applied)

	close(gate)
	slow := <-done
	require.NoError(t, slow.err)
	assert.False(t, slow.res.Applied)
	assert.Less(t, slow.res.Sequence, res.Sequence)
	assert.Equal(t, "fast", f.site.Data().ClanName)
}

func TestExportService(t *testing.T) {
	f := newFixture(t)

	t.Run("csv", func(t *testing.T) {
		out, err := f.export.Export(FormatCSV, nil)
		require.NoError(t, err)
		assert.Equal(t, "gia-pha-ho-le-2025-01-10.csv", out.Filename)
		require.True(t, bytes.HasPrefix(out.Body, []byte("\uFEFF")))

		lines := strings.Split(strings.TrimPrefix(string(out.Body), "\uFEFF"), "\n")
		require.Len(t, lines, family.Count(f.site.Tree())+1)
		assert.Equal(t, "id,name,generation,isMale,birthDate,deathDate,spouseName,parentName,parentId", lines[0])
		assert.Equal(t, `"root","Lê Văn Tổ","1","true","","","Nguyễn Thị Hiền","",""`, lines[1])
		assert.Equal(t, `"m-2-1","Lê Văn Phúc","2","true","","20-10 âm lịch","","Lê Văn Tổ","root"`, lines[2])
	})

	t.Run("csv escapes quotes", func(t *testing.T) {
		var buf bytes.Buffer
		writeQuotedRow(&buf, []string{`Lê "Cả"`, "a,b"}, true)
		assert.Equal(t, `"Lê ""Cả""","a,b"`, buf.String())
	})

	t.Run("json", func(t *testing.T) {
		out, err := f.export.Export(FormatJSON, nil)
		require.NoError(t, err)
		assert.Equal(t, "gia-pha-ho-le-2025-01-10.json", out.Filename)
		var tree entities.FamilyMember
		require.NoError(t, json.Unmarshal(out.Body, &tree))
		assert.Equal(t, "root", tree.ID)
	})

	t.Run("backup", func(t *testing.T) {
		out, err := f.export.Export(FormatBackup, nil)
		require.NoError(t, err)
		var data entities.AppData
		require.NoError(t, json.Unmarshal(out.Body, &data))
		assert.Equal(t, f.site.Data().LastUpdated, data.LastUpdated)
	})

	t.Run("png", func(t *testing.T) {
		out, err := f.export.Export(FormatPNG, nil)
		require.NoError(t, err)
		assert.Equal(t, "phado-ho-le-2025-01-10.png", out.Filename)
		assert.True(t, bytes.HasPrefix(out.Body, []byte("\x89PNG\r\n\x1a\n")))
	})

	_, err := f.export.Export("xml", nil)
	assert.Error(t, err)
}

func TestViewService(t *testing.T) {
	f := newFixture(t)

	created := f.views.Create(ports.CreateViewRequest{Width: 1280, Height: 800})
	require.NotNil(t, created.Layout)
	assert.InDelta(t, 0.8, created.State.Viewport.Scale, 1e-9)

	narrow := f.views.Create(ports.CreateViewRequest{Width: 375, Height: 700})
	assert.InDelta(t, 0.5, narrow.State.Viewport.Scale, 1e-9)

	resp, err := f.views.Zoom(created.ID, ports.ZoomRequest{Direction: "in"})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, resp.State.Viewport.Scale, 1e-9)
	assert.Nil(t, resp.Layout)

	resp, err = f.views.Toggle(created.ID, "m-2-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m-2-1"}, resp.State.Collapsed)
	_, ok := resp.Layout.Find("m-3-1")
	assert.False(t, ok, "collapsed children are not laid out")

	resp, err = f.views.Search(created.ID, ports.SearchRequest{Query: "bình"})
	require.NoError(t, err)
	assert.Empty(t, resp.State.Collapsed, "search expands the matching branch")
	_, ok = resp.Layout.Find("m-3-2")
	assert.True(t, ok)

	snap, err := f.views.Snapshot(created.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(snap.Body, []byte("\x89PNG")))
	after, err := f.views.Get(created.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, after.State.Viewport.Scale, 1e-9, "snapshot restores the scale")

	// A third session evicts the least recently used one.
	f.views.Create(ports.CreateViewRequest{Width: 800, Height: 600})
	assert.Equal(t, 2, f.views.Len())
	_, err = f.views.Get(narrow.ID)
	assert.ErrorIs(t, err, entities.ErrViewNotFound)

	require.NoError(t, f.views.Delete(created.ID))
	assert.ErrorIs(t, f.views.Delete(created.ID), entities.ErrViewNotFound)
}

func TestAuthService(t *testing.T) {
	jwtCfg := config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour, Issuer: "giapha"}
	log := logger.NewNop()

	t.Run("plain password", func(t *testing.T) {
		auth := NewAuthService(config.AdminConfig{Password: "admin123"}, jwtCfg, log)
		_, err := auth.Login(ports.LoginRequest{Password: "wrong"}, "127.0.0.1")
		assert.ErrorIs(t, err, entities.ErrInvalidPassword)

		resp, err := auth.Login(ports.LoginRequest{Password: "admin123"}, "127.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(3600), resp.ExpiresIn)

		claims, err := auth.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, claims.Role)

		other := NewAuthService(config.AdminConfig{Password: "admin123"}, config.JWTConfig{Secret: "other", ExpiresIn: time.Hour}, log)
		_, err = other.ValidateToken(resp.AccessToken)
		assert.Error(t, err)

		auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = auth.ValidateToken(resp.AccessToken)
		assert.Error(t, err, "expired tokens are rejected")
	})

	t.Run("bcrypt hash", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		require.NoError(t, err)
		auth := NewAuthService(config.AdminConfig{Password: string(hash)}, jwtCfg, log)
		assert.True(t, auth.CheckPassword("s3cret"))
		assert.False(t, auth.CheckPassword(string(hash)))
	})
}
