package distributorimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/giveaway-telegram-bot/internal/distributor"
	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/offercache"
	"github.com/orgball2608/giveaway-telegram-bot/internal/ratelimit"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/destinations"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/offers"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/postedids"
	"github.com/orgball2608/giveaway-telegram-bot/internal/storage"
	"github.com/orgball2608/giveaway-telegram-bot/internal/telegram"
	"github.com/orgball2608/giveaway-telegram-bot/internal/telegram/mocks"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/mock/gomock"
)

var fullPerms = domain.Permissions{CanView: true, CanSend: true, CanSendMedia: true}

type fixture struct {
	tg     *mocks.MockClient
	posted *postedids.Document
	dests  *destinations.Document
	cache  *offercache.Manager
	d      *DistributorImpl
}

func newFixture(t *testing.T, fallback string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	log := logger.NewNop()

	cfg := &config.Config{}
	cfg.Telegram.FallbackChannel = fallback

	f := &fixture{
		tg:     mocks.NewMockClient(ctrl),
		posted: postedids.New(ctx, backend, postedids.DefaultLimits(), log),
		dests:  destinations.New(ctx, backend, log),
	}
	f.cache = offercache.New(offercache.Opts{
		Repo:   offers.New(ctx, backend, offers.DefaultLimits(), log),
		Logger: log,
	})
	f.d = New(Opts{
		Telegram:     f.tg,
		Cache:        f.cache,
		Posted:       f.posted,
		Destinations: f.dests,
		Pacer:        ratelimit.NewPacer(0, 1),
		Config:       cfg,
		Logger:       log,
	})
	f.d.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) mapChannel(t *testing.T, community, channel string) {
	t.Helper()
	if err := f.dests.Set(context.Background(), community, channel); err != nil {
		t.Fatal(err)
	}
}

// expectHealthyChannel accepts any number of deliveries to channel.
func (f *fixture) expectHealthyChannel(channel string, chatID int64) *gomock.Call {
	chat := domain.Chat{ID: chatID, Type: domain.ChatTypeChannel}
	f.tg.EXPECT().ResolveChat(gomock.Any(), channel).Return(chat, nil).AnyTimes()
	f.tg.EXPECT().BotPermissions(gomock.Any(), chat).Return(fullPerms, nil).AnyTimes()
	return f.tg.EXPECT().SendNotification(gomock.Any(), chatID, gomock.Any())
}

func widgetPro() domain.Offer {
	return domain.Offer{ID: "gamerpower_77", Title: "Widget Pro", Platform: "PC"}
}

func TestBatchDeliverFirstTick(t *testing.T) {
	f := newFixture(t, "")
	f.mapChannel(t, "-500", "-1001")
	f.expectHealthyChannel("-1001", -1001).Return(42, nil).Times(1)

	report, err := f.d.BatchDeliver(context.Background(), []domain.Offer{widgetPro()})
	if err != nil {
		t.Fatalf("BatchDeliver: %v", err)
	}
	if report.Sent != 1 || report.New != 1 || report.Destinations != 1 || report.RunID == "" {
		t.Errorf("report = %+v", report)
	}
	if !f.posted.Contains("gamerpower_77") {
		t.Error("offer not marked posted")
	}
}

func TestBatchDeliverIsIdempotent(t *testing.T) {
	f := newFixture(t, "")
	f.mapChannel(t, "-500", "-1001")
	f.expectHealthyChannel("-1001", -1001).Return(1, nil).Times(1)

	feed := []domain.Offer{widgetPro()}
	if _, err := f.d.BatchDeliver(context.Background(), feed); err != nil {
		t.Fatal(err)
	}

	report, err := f.d.BatchDeliver(context.Background(), feed)
	if err != nil {
		t.Fatalf("second BatchDeliver: %v", err)
	}
	if report.Sent != 0 || report.New != 0 {
		t.Errorf("second run report = %+v", report)
	}
}

func TestBatchDeliverFansOutSameBatch(t *testing.T) {
	f := newFixture(t, "")
	f.mapChannel(t, "-500", "-1001")
	f.mapChannel(t, "-600", "@deals")
	f.expectHealthyChannel("-1001", -1001).Return(1, nil).Times(1)
	f.expectHealthyChannel("@deals", -2002).Return(2, nil).Times(1)

	report, err := f.d.BatchDeliver(context.Background(), []domain.Offer{widgetPro()})
	if err != nil {
		t.Fatal(err)
	}
	if report.Sent != 2 || report.Destinations != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestBatchDeliverWithoutDestinations(t *testing.T) {
	f := newFixture(t, "")

	report, err := f.d.BatchDeliver(context.Background(), []domain.Offer{widgetPro()})
	if !errors.Is(err, distributor.ErrNoDestinations) {
		t.Fatalf("err = %v, want ErrNoDestinations", err)
	}
	if report.Note != distributor.ErrNoDestinations.Error() || report.Sent != 0 {
		t.Errorf("report = %+v", report)
	}
	if _, ok := f.cache.Lookup("gamerpower_77"); !ok {
		t.Error("offer must be cached even without destinations")
	}
	if f.posted.Contains("gamerpower_77") {
		t.Error("undelivered offer marked posted")
	}
}

func TestBatchDeliverUsesFallback(t *testing.T) {
	f := newFixture(t, "@fallback")
	f.expectHealthyChannel("@fallback", -3003).Return(5, nil).Times(1)

	report, err := f.d.BatchDeliver(context.Background(), []domain.Offer{widgetPro()})
	if err != nil || report.Sent != 1 {
		t.Fatalf("report = %+v, err = %v", report, err)
	}
}

func TestBatchDeliverCachesAlreadyPosted(t *testing.T) {
	f := newFixture(t, "")
	f.mapChannel(t, "-500", "-1001")
	if err := f.posted.Mark(context.Background(), "gamerpower_1"); err != nil {
		t.Fatal(err)
	}

	var sent []domain.Notification
	f.expectHealthyChannel("-1001", -1001).DoAndReturn(
		func(_ context.Context, _ int64, n domain.Notification) (int, error) {
			sent = append(sent, n)
			return len(sent), nil
		},
	).Times(1)

	feed := []domain.Offer{
		{ID: "gamerpower_1", Title: "Old", Platform: "PC"},
		{ID: "gamerpower_2", Title: "New", Platform: "PC"},
	}
	report, err := f.d.BatchDeliver(context.Background(), feed)
	if err != nil {
		t.Fatal(err)
	}
	if report.New != 1 || report.Sent != 1 {
		t.Errorf("report = %+v", report)
	}
	for _, o := range feed {
		if _, ok := f.cache.Lookup(o.ID); !ok {
			t.Errorf("%s missing from cache", o.ID)
		}
	}
}

func TestBatchDeliverIsolatesFailures(t *testing.T) {
	f := newFixture(t, "")
	f.mapChannel(t, "-400", "@gone")
	f.mapChannel(t, "-500", "-1001")

	f.tg.EXPECT().ResolveChat(gomock.Any(), "@gone").
		Return(domain.Chat{}, telegram.ErrChatNotFound).Times(1)
	f.expectHealthyChannel("-1001", -1001).Return(1, nil).Times(1)

	report, err := f.d.BatchDeliver(context.Background(), []domain.Offer{widgetPro()})
	if err != nil {
		t.Fatal(err)
	}
	if report.Sent != 1 || report.Failed != 1 || report.Failures[string(distributor.ReasonChannelNotFound)] != 1 {
		t.Errorf("report = %+v", report)
	}
	if !f.posted.Contains("gamerpower_77") {
		t.Error("offer delivered once must be marked posted")
	}
}

func TestBatchDeliverStopsOnCancel(t *testing.T) {
	f := newFixture(t, "")
	f.mapChannel(t, "-500", "-1001")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.d.BatchDeliver(ctx, []domain.Offer{widgetPro()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if report.Sent != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestDeliverOneMissingSendPermission(t *testing.T) {
	f := newFixture(t, "")
	chat := domain.Chat{ID: -1001, Type: domain.ChatTypeChannel}
	f.tg.EXPECT().ResolveChat(gomock.Any(), "-1001").Return(chat, nil)
	f.tg.EXPECT().BotPermissions(gomock.Any(), chat).Return(domain.Permissions{CanView: true}, nil)

	_, err := f.d.DeliverOne(context.Background(), "-1001", widgetPro())

	var de *distributor.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DeliveryError", err)
	}
	if de.Reason != distributor.ReasonMissingPermissions {
		t.Errorf("reason = %s", de.Reason)
	}
	if len(de.Missing) != 1 || de.Missing[0] != domain.CapabilitySendMessages {
		t.Errorf("missing = %v", de.Missing)
	}
	if f.posted.Contains("gamerpower_77") {
		t.Error("DeliverOne must not touch the posted set")
	}
}

func TestDeliverOneNotTextCapable(t *testing.T) {
	f := newFixture(t, "")
	f.tg.EXPECT().ResolveChat(gomock.Any(), "42").
		Return(domain.Chat{ID: 42, Type: domain.ChatTypePrivate}, nil)

	_, err := f.d.DeliverOne(context.Background(), "42", widgetPro())
	if got := distributor.ReasonOf(err); got != distributor.ReasonNotTextCapable {
		t.Fatalf("reason = %s (err %v)", got, err)
	}
}

func TestDeliverOneSendFailure(t *testing.T) {
	f := newFixture(t, "")
	cause := errors.New("Too Many Requests: retry after 5")
	f.expectHealthyChannel("-1001", -1001).Return(0, cause)

	_, err := f.d.DeliverOne(context.Background(), "-1001", widgetPro())
	if got := distributor.ReasonOf(err); got != distributor.ReasonSendFailed {
		t.Fatalf("reason = %s", got)
	}
	if !errors.Is(err, cause) {
		t.Error("send failure must carry the underlying error")
	}
}

func TestDeliverOneDegradesWithoutMedia(t *testing.T) {
	f := newFixture(t, "")
	chat := domain.Chat{ID: -1001, Type: domain.ChatTypeSupergroup}
	f.tg.EXPECT().ResolveChat(gomock.Any(), "-1001").Return(chat, nil)
	f.tg.EXPECT().BotPermissions(gomock.Any(), chat).
		Return(domain.Permissions{CanView: true, CanSend: true}, nil)

	var got domain.Notification
	f.tg.EXPECT().SendNotification(gomock.Any(), int64(-1001), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, n domain.Notification) (int, error) {
			got = n
			return 9, nil
		},
	)

	offer := widgetPro()
	offer.Thumbnail = "https://img.test/w.jpg"
	delivery, err := f.d.DeliverOne(context.Background(), "-1001", offer)
	if err != nil {
		t.Fatal(err)
	}
	if delivery.MessageID != 9 || delivery.ChatID != -1001 {
		t.Errorf("delivery = %+v", delivery)
	}
	if got.PhotoURL != "" {
		t.Errorf("PhotoURL = %q without media permission", got.PhotoURL)
	}
}

func TestDeliverOneSendsWhenPermissionsUnknown(t *testing.T) {
	f := newFixture(t, "")
	chat := domain.Chat{ID: -1001, Type: domain.ChatTypeGroup}
	f.tg.EXPECT().ResolveChat(gomock.Any(), "-1001").Return(chat, nil)
	f.tg.EXPECT().BotPermissions(gomock.Any(), chat).Return(domain.Permissions{}, errors.New("timeout"))
	f.tg.EXPECT().SendNotification(gomock.Any(), int64(-1001), gomock.Any()).Return(3, nil)

	if _, err := f.d.DeliverOne(context.Background(), "-1001", widgetPro()); err != nil {
		t.Fatalf("DeliverOne: %v", err)
	}
}

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func threeOffers() []domain.Offer {
	return []domain.Offer{
		{ID: "gamerpower_1", Title: "One", Platform: "PC"},
		{ID: "gamerpower_2", Title: "Two", Platform: "PC"},
		{ID: "gamerpower_3", Title: "Three", Platform: "PC"},
	}
}

func TestBatchDeliverPacesFailedAttempts(t *testing.T) {
	f := newFixture(t, "")
	f.mapChannel(t, "-500", "-1001")
	pacer := &countingPacer{}
	f.d.pacer = pacer

	chat := domain.Chat{ID: -1001, Type: domain.ChatTypeChannel}
	f.tg.EXPECT().ResolveChat(gomock.Any(), "-1001").Return(chat, nil).Times(3)
	f.tg.EXPECT().BotPermissions(gomock.Any(), chat).Return(domain.Permissions{CanView: true}, nil).Times(3)

	report, err := f.d.BatchDeliver(context.Background(), threeOffers())
	if err != nil {
		t.Fatal(err)
	}
	if report.Failures[string(distributor.ReasonMissingPermissions)] != 3 {
		t.Errorf("report = %+v", report)
	}
	if pacer.waits != 3 {
		t.Errorf("pacer waits = %d, want one per attempt", pacer.waits)
	}
}

func TestBatchDeliverSpacesAttempts(t *testing.T) {
	f := newFixture(t, "")
	f.mapChannel(t, "-500", "-1001")
	f.d.pacer = ratelimit.NewPacer(40*time.Millisecond, 1)

	chat := domain.Chat{ID: -1001, Type: domain.ChatTypeChannel}
	f.tg.EXPECT().ResolveChat(gomock.Any(), "-1001").Return(chat, nil).Times(3)
	f.tg.EXPECT().BotPermissions(gomock.Any(), chat).Return(domain.Permissions{CanView: true}, nil).Times(3)

	start := time.Now()
	if _, err := f.d.BatchDeliver(context.Background(), threeOffers()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Errorf("three attempts took %v, want at least two intervals", elapsed)
	}
}

func TestBatchDeliverSkipsUnreachableDestination(t *testing.T) {
	f := newFixture(t, "")
	f.mapChannel(t, "-400", "@gone")
	f.mapChannel(t, "-500", "-1001")
	pacer := &countingPacer{}
	f.d.pacer = pacer

	f.tg.EXPECT().ResolveChat(gomock.Any(), "@gone").
		Return(domain.Chat{}, telegram.ErrChatNotFound).Times(1)
	f.expectHealthyChannel("-1001", -1001).Return(1, nil).Times(3)

	report, err := f.d.BatchDeliver(context.Background(), threeOffers())
	if err != nil {
		t.Fatal(err)
	}
	if report.Sent != 3 || report.Failures[string(distributor.ReasonChannelNotFound)] != 3 {
		t.Errorf("report = %+v", report)
	}
	if pacer.waits != 4 {
		t.Errorf("pacer waits = %d, want 4", pacer.waits)
	}
}

func TestDeliverOnePrivateFallback(t *testing.T) {
	f := newFixture(t, "777")
	f.tg.EXPECT().ResolveChat(gomock.Any(), "777").
		Return(domain.Chat{ID: 777, Type: domain.ChatTypePrivate}, nil)
	f.tg.EXPECT().SendNotification(gomock.Any(), int64(777), gomock.Any()).Return(4, nil)

	delivery, err := f.d.DeliverOne(context.Background(), "777", widgetPro())
	if err != nil {
		t.Fatalf("DeliverOne: %v", err)
	}
	if delivery.MessageID != 4 {
		t.Errorf("delivery = %+v", delivery)
	}
}

func TestDeliverOnePrivateMappedChannelRejected(t *testing.T) {
	f := newFixture(t, "777")
	f.tg.EXPECT().ResolveChat(gomock.Any(), "42").
		Return(domain.Chat{ID: 42, Type: domain.ChatTypePrivate}, nil)

	_, err := f.d.DeliverOne(context.Background(), "42", widgetPro())
	if got := distributor.ReasonOf(err); got != distributor.ReasonNotTextCapable {
		t.Fatalf("reason = %s (err %v)", got, err)
	}
}
