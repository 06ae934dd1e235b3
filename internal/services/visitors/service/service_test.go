package service

import (
	"context"
	"testing"
	"time"

	"toolgate/internal/modkit/repokit"
	tim "toolgate/internal/platform/time"
	"toolgate/internal/services/visitors/domain"
	"toolgate/internal/services/visitors/repo"

	ident "toolgate/internal/services/ident/domain"
)

// fakeTx satisfies TxRunner; the bound fake repo ignores the Queryer
type fakeTx struct{}

func (fakeTx) Exec(ctx context.Context, sql string, args ...any) (repokit.CommandTag, error) {
	return nil, nil
}
func (fakeTx) Query(ctx context.Context, sql string, args ...any) (repokit.Rows, error) {
	return nil, nil
}
func (fakeTx) QueryRow(ctx context.Context, sql string, args ...any) repokit.Row { return nil }
func (f fakeTx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error  { return fn(f) }

type fakeRepo struct {
	ledgers map[string]*domain.Ledger
	byIP    map[string]*domain.Ledger

	rekeyed    []string
	inserted   []string
	recorded   []string
	appended   []domain.FileRecord
	attributed []string
	touched    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		ledgers: map[string]*domain.Ledger{},
		byIP:    map[string]*domain.Ledger{},
	}
}

func (f *fakeRepo) binder() repokit.Binder[repo.Repo] {
	return repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return f })
}

func (f *fakeRepo) GetByKey(ctx context.Context, key string) (*domain.Ledger, error) {
	return f.ledgers[key], nil
}

func (f *fakeRepo) GetByIPWithoutCookie(ctx context.Context, ip string) (*domain.Ledger, error) {
	return f.byIP[ip], nil
}

func (f *fakeRepo) Rekey(ctx context.Context, id, cookieID string) error {
	f.rekeyed = append(f.rekeyed, id+"->"+cookieID)
	for k, l := range f.ledgers {
		if l.ID == id {
			delete(f.ledgers, k)
			l.VisitorKey = cookieID
			l.CookieID = cookieID
			l.Kind = ident.KindCookie
			f.ledgers[cookieID] = l
			break
		}
	}
	return nil
}

func (f *fakeRepo) Insert(ctx context.Context, l *domain.Ledger) error {
	f.inserted = append(f.inserted, l.VisitorKey)
	cp := *l
	cp.RecentFiles = []domain.FileRecord{}
	cp.ToolHistory = []domain.ToolUse{}
	f.ledgers[l.VisitorKey] = &cp
	return nil
}

func (f *fakeRepo) Touch(ctx context.Context, key string, device ident.DeviceType, ua, ref string) error {
	f.touched++
	return nil
}

func (f *fakeRepo) RecordUse(ctx context.Context, key, tool string, files int, size int64, session string, device ident.DeviceType, ua, ref string) (repo.UseUpdate, error) {
	f.recorded = append(f.recorded, key+":"+tool)
	l := f.ledgers[key]
	l.LifetimeUses++
	l.ToolHistory = append(l.ToolHistory, domain.ToolUse{ToolName: tool, FileCount: files})
	upd := repo.UseUpdate{LifetimeUses: l.LifetimeUses}
	if l.LifetimeUses >= domain.LifetimeLimit && !l.Conversion.HitLimit {
		l.Conversion.HitLimit = true
		l.Conversion.HitLimitAt = tim.Ptr(time.Now())
		l.Conversion.LimitToolName = tool
		upd.Latched = true
	}
	upd.HitLimit = l.Conversion.HitLimit
	upd.HitLimitAt = l.Conversion.HitLimitAt
	upd.LimitTool = l.Conversion.LimitToolName
	return upd, nil
}

func (f *fakeRepo) AppendFile(ctx context.Context, key string, fr domain.FileRecord) error {
	f.appended = append(f.appended, fr)
	l := f.ledgers[key]
	l.RecentFiles = append(l.RecentFiles, fr)
	return nil
}

func (f *fakeRepo) Attribute(ctx context.Context, key, userID, sessionID string) (repo.AttributeUpdate, error) {
	l := f.ledgers[key]
	if l == nil {
		return repo.AttributeUpdate{Missing: true}, nil
	}
	if l.Conversion.Converted {
		return repo.AttributeUpdate{
			AlreadyDone: true,
			ConvertedAt: l.Conversion.ConvertedAt,
			HitLimitAt:  l.Conversion.HitLimitAt,
			LimitTool:   l.Conversion.LimitToolName,
		}, nil
	}
	l.Conversion.Converted = true
	l.Conversion.ConvertedAt = tim.Ptr(time.Now())
	l.Conversion.ConvertedUserID = userID
	f.attributed = append(f.attributed, key+":"+userID)
	return repo.AttributeUpdate{
		Attributed:  true,
		ConvertedAt: l.Conversion.ConvertedAt,
		HitLimitAt:  l.Conversion.HitLimitAt,
		LimitTool:   l.Conversion.LimitToolName,
	}, nil
}

func (f *fakeRepo) AttributeRecentByIP(ctx context.Context, ip, userID, sessionID string, lookback time.Duration) (repo.AttributeUpdate, error) {
	l := f.byIP[ip]
	if l == nil || !l.Conversion.HitLimit || l.Conversion.Converted {
		return repo.AttributeUpdate{Missing: true}, nil
	}
	if l.Conversion.HitLimitAt == nil || time.Since(*l.Conversion.HitLimitAt) > lookback {
		return repo.AttributeUpdate{Missing: true}, nil
	}
	l.Conversion.Converted = true
	l.Conversion.ConvertedAt = tim.Ptr(time.Now())
	f.attributed = append(f.attributed, "ip:"+ip+":"+userID)
	return repo.AttributeUpdate{
		Attributed:  true,
		ConvertedAt: l.Conversion.ConvertedAt,
		HitLimitAt:  l.Conversion.HitLimitAt,
		LimitTool:   l.Conversion.LimitToolName,
	}, nil
}

type fakeEnqueuer struct{ kinds []string }

func (f *fakeEnqueuer) Enqueue(ctx context.Context, kind string, payload any) error {
	f.kinds = append(f.kinds, kind)
	return nil
}

func newSvc(f *fakeRepo, enq *fakeEnqueuer) *Svc {
	return New(fakeTx{}, f.binder(), Options{Enqueuer: enq})
}

func sig(cookie string) domain.Signals {
	return domain.Signals{CookieID: cookie, IP: "203.0.113.5", UserAgent: "ua"}
}

func TestCheck_NewVisitorOpensGate(t *testing.T) {
	f := newFakeRepo()
	s := newSvc(f, &fakeEnqueuer{})

	out, err := s.Check(context.Background(), domain.CheckInput{Signals: sig("anon_1")})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !out.Trackable || !out.CanUse || !out.IsNewVisitor {
		t.Fatalf("fresh visitor should be trackable, open, and new: %+v", out)
	}
	if out.VisitorKey != "anon_1" || out.TrackingMethod != "cookie" {
		t.Fatalf("cookie key should win: %+v", out)
	}
	if len(f.inserted) != 1 || f.touched != 1 {
		t.Fatalf("expected one insert and one touch, got %d/%d", len(f.inserted), f.touched)
	}
}

func TestCheck_Untrackable(t *testing.T) {
	s := newSvc(newFakeRepo(), &fakeEnqueuer{})

	out, err := s.Check(context.Background(), domain.CheckInput{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if out.Trackable || !out.CanUse {
		t.Fatalf("no signals must fail open: %+v", out)
	}
}

func TestUse_CrossingIncrementLatchesAndEnqueues(t *testing.T) {
	f := newFakeRepo()
	enq := &fakeEnqueuer{}
	s := newSvc(f, enq)

	var last domain.UseResult
	for i := 0; i < domain.LifetimeLimit; i++ {
		var err error
		last, err = s.Use(context.Background(), domain.UseInput{Signals: sig("anon_2"), ToolName: "merge"})
		if err != nil {
			t.Fatalf("use %d: %v", i, err)
		}
	}
	if !last.HitLimit || !last.AtLimit || last.CurrentUsage != domain.LifetimeLimit {
		t.Fatalf("ceiling use should latch: %+v", last)
	}

	var hits, counters int
	for _, k := range enq.kinds {
		switch k {
		case "limit_hit":
			hits++
		case "tool_counter":
			counters++
		}
	}
	if hits != 1 {
		t.Fatalf("latch must enqueue exactly one limit_hit, got %d", hits)
	}
	if counters != domain.LifetimeLimit {
		t.Fatalf("every counted use enqueues a tool_counter, got %d", counters)
	}

	// one more use past the ceiling must not re-trip the latch
	again, err := s.Use(context.Background(), domain.UseInput{Signals: sig("anon_2"), ToolName: "split"})
	if err != nil {
		t.Fatalf("use past ceiling: %v", err)
	}
	if !again.HitLimit || again.CurrentUsage != domain.LifetimeLimit+1 {
		t.Fatalf("post-ceiling state wrong: %+v", again)
	}
	hits = 0
	for _, k := range enq.kinds {
		if k == "limit_hit" {
			hits++
		}
	}
	if hits != 1 {
		t.Fatalf("latch re-tripped, limit_hit count %d", hits)
	}
}

func TestUse_LatchTakenElsewhereSkipsLimitHit(t *testing.T) {
	f := newFakeRepo()
	enq := &fakeEnqueuer{}
	s := newSvc(f, enq)

	// ledger state a racing request leaves behind: the pre-update read
	// still shows the count one below the ceiling, but the latch is taken
	f.ledgers["anon_9"] = &domain.Ledger{
		ID:           "led-9",
		VisitorKey:   "anon_9",
		Kind:         ident.KindCookie,
		LifetimeUses: domain.LifetimeLimit - 1,
		RecentFiles:  []domain.FileRecord{},
		ToolHistory:  []domain.ToolUse{},
		Conversion: domain.Conversion{
			HitLimit:      true,
			HitLimitAt:    tim.Ptr(time.Now()),
			LimitToolName: "merge",
		},
	}

	out, err := s.Use(context.Background(), domain.UseInput{Signals: sig("anon_9"), ToolName: "split"})
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if !out.HitLimit {
		t.Fatalf("latched ledger should stay latched: %+v", out)
	}
	for _, k := range enq.kinds {
		if k == "limit_hit" {
			t.Fatalf("only the latching update may enqueue a limit_hit: %v", enq.kinds)
		}
	}
}

func TestUse_DuplicateFileSkipsIncrement(t *testing.T) {
	f := newFakeRepo()
	enq := &fakeEnqueuer{}
	s := newSvc(f, enq)

	hash := "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	in := domain.UseInput{
		Signals:  sig("anon_3"),
		ToolName: "compress",
		File:     &domain.FileMeta{ContentHash: hash, FileName: "Report.PDF", FileSize: 1024},
	}

	first, err := s.Use(context.Background(), in)
	if err != nil {
		t.Fatalf("first use: %v", err)
	}
	if first.IsDuplicate || first.CurrentUsage != 1 {
		t.Fatalf("first pass counts: %+v", first)
	}
	if len(f.appended) != 1 {
		t.Fatalf("first pass should remember the file")
	}

	second, err := s.Use(context.Background(), in)
	if err != nil {
		t.Fatalf("second use: %v", err)
	}
	if !second.IsDuplicate {
		t.Fatalf("same file and tool should be flagged: %+v", second)
	}
	if second.CurrentUsage != 1 {
		t.Fatalf("duplicate must not burn a use: %+v", second)
	}
	if len(f.recorded) != 1 {
		t.Fatalf("duplicate must not hit RecordUse, got %d", len(f.recorded))
	}

	// same file through a different tool counts normally
	in.ToolName = "merge"
	third, err := s.Use(context.Background(), in)
	if err != nil {
		t.Fatalf("third use: %v", err)
	}
	if third.IsDuplicate || third.CurrentUsage != 2 {
		t.Fatalf("different tool should count: %+v", third)
	}
}

func TestUse_CookieUpgradeFromIPLedger(t *testing.T) {
	f := newFakeRepo()
	s := newSvc(f, &fakeEnqueuer{})

	// visitor burned a use before cookies were accepted
	prior := &domain.Ledger{
		ID:           "led-1",
		VisitorKey:   "203.0.113.5",
		Kind:         ident.KindIP,
		IP:           "203.0.113.5",
		LifetimeUses: 1,
		RecentFiles:  []domain.FileRecord{},
		ToolHistory:  []domain.ToolUse{},
	}
	f.ledgers[prior.VisitorKey] = prior
	f.byIP[prior.IP] = prior

	out, err := s.Use(context.Background(), domain.UseInput{Signals: sig("anon_4"), ToolName: "split"})
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if len(f.rekeyed) != 1 || f.rekeyed[0] != "led-1->anon_4" {
		t.Fatalf("expected re-key to the cookie id, got %v", f.rekeyed)
	}
	if out.CurrentUsage != 2 {
		t.Fatalf("the IP ledger's count must carry over: %+v", out)
	}
	if len(f.inserted) != 0 {
		t.Fatalf("upgrade must not create a second ledger")
	}
}

func TestConvert_IdempotentAndIPFallback(t *testing.T) {
	f := newFakeRepo()
	enq := &fakeEnqueuer{}
	s := newSvc(f, enq)

	hitAt := time.Now().Add(-10 * time.Minute)
	led := &domain.Ledger{
		ID:         "led-2",
		VisitorKey: "anon_5",
		Kind:       ident.KindCookie,
		CookieID:   "anon_5",
		IP:         "203.0.113.5",
	}
	led.Conversion.HitLimit = true
	led.Conversion.HitLimitAt = &hitAt
	led.Conversion.LimitToolName = "merge"
	f.ledgers["anon_5"] = led

	out, err := s.Convert(context.Background(), domain.ConvertInput{Signals: sig("anon_5"), UserID: "u-1"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !out.Attributed || out.AlreadyDone {
		t.Fatalf("first convert should attribute: %+v", out)
	}
	if out.LimitToolName != "merge" || out.MinutesToConv < 9 {
		t.Fatalf("attribution detail wrong: %+v", out)
	}

	again, err := s.Convert(context.Background(), domain.ConvertInput{Signals: sig("anon_5"), UserID: "u-1"})
	if err != nil {
		t.Fatalf("second convert: %v", err)
	}
	if again.Attributed || !again.AlreadyDone {
		t.Fatalf("repeat convert must be a no-op: %+v", again)
	}

	var conversions int
	for _, k := range enq.kinds {
		if k == "conversion_recorded" {
			conversions++
		}
	}
	if conversions != 1 {
		t.Fatalf("exactly one conversion job expected, got %d", conversions)
	}

	// cookie minted at signup, ledger only known by IP
	ipLed := &domain.Ledger{ID: "led-3", VisitorKey: "198.51.100.7", Kind: ident.KindIP, IP: "198.51.100.7"}
	ipLed.Conversion.HitLimit = true
	ipLed.Conversion.HitLimitAt = &hitAt
	f.byIP["198.51.100.7"] = ipLed

	fresh, err := s.Convert(context.Background(), domain.ConvertInput{
		Signals: domain.Signals{CookieID: "anon_new", IP: "198.51.100.7"},
		UserID:  "u-2",
	})
	if err != nil {
		t.Fatalf("ip fallback convert: %v", err)
	}
	if !fresh.Attributed {
		t.Fatalf("recent limit-hit IP ledger should be attributed: %+v", fresh)
	}
}

func TestSummary_MissingLedgerStaysOpen(t *testing.T) {
	s := newSvc(newFakeRepo(), &fakeEnqueuer{})

	out, err := s.Summary(context.Background(), domain.SummaryInput{Signals: sig("anon_6")})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.Found || !out.CanUse {
		t.Fatalf("unknown visitor summary should stay open: %+v", out)
	}
}
