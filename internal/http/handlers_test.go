package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/config"
	"github.com/mauv0809/padel-roster/internal/database"
	"github.com/mauv0809/padel-roster/internal/grid"
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/period"
	"github.com/mauv0809/padel-roster/internal/processor"
	"github.com/mauv0809/padel-roster/internal/pubsub"
	"github.com/mauv0809/padel-roster/internal/roster"
	"github.com/mauv0809/padel-roster/internal/sheets"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSlackSigningSecret = "test-signing-secret"

type testServer struct {
	*Server
	store    club.ClubStore
	engine   *roster.Engine
	sink     *sheets.Mock
	pubsub   *pubsub.MockPubSubClient
	notifier *notifier.Mock
}

// setupTestServer initializes a new server with an in-memory database and mock clients.
func setupTestServer(t *testing.T, slackSigningSecret string) testServer {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	clubStore := club.New(db)
	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	counters := metrics.New(db)
	ps := pubsub.NewMock("TEST")
	sink := sheets.NewMock()
	n := notifier.NewMock()

	engine := roster.New(clubStore, metricsSvc)
	periods := period.New(clubStore, sink, n, metricsSvc, period.Config{WorksheetPrefix: "Americano", MaxGroupsPerAdmin: 3})
	proc := processor.New(clubStore, engine, sink, ps, n, metricsSvc, counters, processor.Config{WorksheetPrefix: "Americano", Workers: 2})
	server := NewServer(clubStore, metricsHandler, counters, cfg, n, engine, periods, proc, ps, nil)

	return testServer{Server: server, store: clubStore, engine: engine, sink: sink, pubsub: ps, notifier: n}
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := strings.NewReader(form.Encode())
	req, err := http.NewRequest("POST", targetURL, body)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	// The body is read for the signature and then reset for the handler.
	bodyBytes, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	signature := hex.EncodeToString(h.Sum(nil))

	req.Header.Set("X-Slack-Signature", "v0="+signature)
	return req
}

// command sends a signed slash command as userID and returns the response body.
func (s testServer) command(t *testing.T, name, userID, text string) string {
	t.Helper()
	form := url.Values{}
	form.Set("user_id", userID)
	form.Set("user_name", strings.ToLower(userID))
	form.Set("text", text)
	req := createSlackCommandRequest(t, "/slack/command/"+name, form, testSlackSigningSecret)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return rr.Body.String()
}

// addGroup stores a group whose match day is one week from today, with members U1..U<members>.
func (s testServer) addGroup(t *testing.T, id string, courts, members int) time.Time {
	t.Helper()
	ctx := context.Background()
	today := calendar.DateOf(time.Now())
	matchDay := today.AddDate(0, 0, 7)

	if _, err := s.store.GetAdmin(ctx, "A1"); err != nil {
		require.NoError(t, s.store.CreateAdmin(ctx, club.Admin{ID: "A1", Username: "admin"}))
	}
	require.NoError(t, s.store.CreateGroup(ctx, club.Group{
		ID:                    id,
		Name:                  "Group " + id,
		AdminID:               "A1",
		GameWeekday:           calendar.Weekday(matchDay),
		WeekRange:             3,
		CourtLimit:            courts,
		Spreadsheet:           "spreadsheet-" + id,
		RegistrationOpenUntil: today.AddDate(0, 0, 21),
		CreatedAt:             today,
	}))
	for i := 1; i <= members; i++ {
		memberID := fmt.Sprintf("U%d", i)
		if _, err := s.store.GetMember(ctx, memberID); err != nil {
			require.NoError(t, s.store.CreateMember(ctx, club.Member{ID: memberID, FirstName: "Player", LastName: fmt.Sprintf("No%d", i), Phone: "+4520123456"}))
		}
		require.NoError(t, s.store.CreateMembership(ctx, club.Membership{MemberID: memberID, GroupID: id, Status: club.MembershipActive}))
	}
	return matchDay
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t, "")

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestSlackSignatureVerification(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)

	form := url.Values{}
	form.Set("user_id", "A1")
	form.Set("text", "")

	t.Run("accepts a signed request", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/list-groups", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("rejects request with invalid signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/list-groups", form, testSlackSigningSecret)
		req.Header.Set("X-Slack-Signature", "v0=invalid-signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request signed with another secret", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/list-groups", form, "other-secret")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with missing signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/list-groups", form, testSlackSigningSecret)
		req.Header.Del("X-Slack-Signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with outdated timestamp", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/list-groups", form, testSlackSigningSecret)
		req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Add(-6*time.Minute).Unix(), 10))

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAdminCommands(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)

	body := server.command(t, "list-groups", "A9", "")
	assert.Contains(t, body, "sign up as an admin first")

	body = server.command(t, "signup", "A9", "Maria Jensen")
	assert.Contains(t, body, "You are now an admin")
	admin, err := server.store.GetAdmin(context.Background(), "A9")
	require.NoError(t, err)
	assert.Equal(t, "Maria", admin.FirstName)
	assert.Equal(t, "Jensen", admin.LastName)

	body = server.command(t, "signup", "A9", "")
	assert.Contains(t, body, "already signed up as an admin")

	body = server.command(t, "list-groups", "A9", "")
	assert.Contains(t, body, "any groups yet")
}

func TestAddGroupConversation(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	ctx := context.Background()

	t.Run("requires an admin", func(t *testing.T) {
		body := server.command(t, "add-group", "NOBODY", "")
		assert.Contains(t, body, "sign up as an admin first")
	})

	server.command(t, "signup", "A1", "")

	t.Run("creates the group after the last answer", func(t *testing.T) {
		server.command(t, "add-group", "A1", "")
		server.command(t, "add-group", "A1", "thursday-club")
		server.command(t, "add-group", "A1", "Thursday Club")
		server.command(t, "add-group", "A1", "Thursday")

		body := server.command(t, "add-group", "A1", "0")
		assert.Contains(t, body, "the week range must be a number from 1 to 12")

		server.command(t, "add-group", "A1", "3")
		server.command(t, "add-group", "A1", "<https://docs.google.com/spreadsheets/d/abcdefghijkl12345/edit|sheet>")
		body = server.command(t, "add-group", "A1", "2")
		assert.Contains(t, body, "is ready")

		g, err := server.store.GetGroup(ctx, "thursday-club")
		require.NoError(t, err)
		assert.Equal(t, "Thursday Club", g.Name)
		assert.Equal(t, 3, g.GameWeekday)
		assert.Equal(t, "abcdefghijkl12345", g.Spreadsheet)
		assert.Len(t, server.sink.CreateSheetCalls, 1)
		assert.Len(t, server.notifier.AnnouncePeriodOpenedCalls, 1)

		_, open := server.Sessions.Get(groupSetupKeyFor("A1"))
		assert.False(t, open)
	})

	t.Run("can be cancelled", func(t *testing.T) {
		server.command(t, "add-group", "A1", "friday-club")
		body := server.command(t, "add-group", "A1", "cancel")
		assert.Contains(t, body, "Group setup cancelled.")

		_, err := server.store.GetGroup(ctx, "friday-club")
		assert.ErrorIs(t, err, club.ErrNotFound)
	})
}

func groupSetupKeyFor(userID string) string { return "add-group:" + userID }

func TestDeleteGroupCommand(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	server.addGroup(t, "g1", 1, 0)

	body := server.command(t, "delete-group", "U1", "g1")
	assert.Contains(t, body, "only the admin of this group can do that")

	body = server.command(t, "delete-group", "A1", "")
	assert.Contains(t, body, "Usage")

	body = server.command(t, "delete-group", "A1", "g1")
	assert.Contains(t, body, "deleted")

	g, err := server.store.GetGroup(context.Background(), "g1")
	require.NoError(t, err)
	assert.False(t, g.Active())
}

func TestJoinConversation(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	server.addGroup(t, "g1", 1, 1)

	body := server.command(t, "join", "UANNA", "missing")
	assert.Contains(t, body, "does not exist")

	body = server.command(t, "join", "UANNA", "g1")
	assert.Contains(t, body, "What is your first name?")

	body = server.command(t, "join", "UANNA", "An")
	assert.Contains(t, body, "at least 3 letters")

	server.command(t, "join", "UANNA", "Anna")
	server.command(t, "join", "UANNA", "Larsen")
	server.command(t, "join", "UANNA", "+45 2012 3456")
	body = server.command(t, "join", "UANNA", "skip")
	assert.Contains(t, body, "You are now a member")

	member, err := server.store.GetMember(context.Background(), "UANNA")
	require.NoError(t, err)
	assert.Equal(t, "Anna Larsen", member.DisplayName())
	assert.Equal(t, "+4520123456", member.Phone)
	assert.Nil(t, member.Email)
	require.Len(t, server.notifier.NotifyMemberJoinedCalls, 1)
	assert.Equal(t, "A1", server.notifier.NotifyMemberJoinedCalls[0].Group.AdminID)

	t.Run("existing member joins without questions", func(t *testing.T) {
		server.addGroup(t, "g2", 1, 0)
		body := server.command(t, "join", "UANNA", "g2")
		assert.Contains(t, body, "You are now a member")
	})

	t.Run("joining twice is rejected", func(t *testing.T) {
		body := server.command(t, "join", "U1", "g1")
		assert.Contains(t, body, "already a member of this group")
	})
}

func TestRegisterAndCancel(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	matchDay := server.addGroup(t, "g1", 1, 5)
	day := calendar.FormatDate(matchDay)

	for i := 1; i <= 5; i++ {
		body := server.command(t, "register-game", fmt.Sprintf("U%d", i), "g1 "+day)
		if i <= 4 {
			assert.Contains(t, body, fmt.Sprintf("player #%d", i))
		} else {
			assert.Contains(t, body, "waiting list #1")
		}
	}
	require.Len(t, server.pubsub.SendMessageCalls, 5)
	assert.Equal(t, string(pubsub.EventSyncGroup), server.pubsub.SendMessageCalls[0].Topic)
	assert.Equal(t, pubsub.SyncRequest{GroupID: "g1"}, server.pubsub.SendMessageCalls[0].Data)

	body := server.command(t, "register-game", "U1", "g1 "+day)
	assert.Contains(t, body, "already registered for this date")

	body = server.command(t, "list-matches", "U5", "")
	assert.Contains(t, body, "Group g1")
	assert.Contains(t, body, "waiting list #1")

	body = server.command(t, "cancel-game", "U2", "g1 "+day)
	assert.Contains(t, body, "is cancelled")
	require.Len(t, server.notifier.NotifyPromotionCalls, 1)
	assert.Equal(t, "U5", server.notifier.NotifyPromotionCalls[0].Member.ID)

	entries, err := server.engine.RosterFor(context.Background(), "g1", matchDay)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "U5", entries[3].Member.ID)
	assert.Equal(t, roster.Confirmed, entries[3].Classification)
}

func TestRegisterRejections(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	matchDay := server.addGroup(t, "g1", 1, 1)

	testCases := []struct {
		name string
		user string
		text string
		want string
	}{
		{"usage", "U1", "g1", "Usage"},
		{"bad date", "U1", "g1 31.02.2030", "invalid date"},
		{"not a member", "U7", "g1 " + calendar.FormatDate(matchDay), "not an active member"},
		{"wrong weekday", "U1", "g1 " + calendar.FormatDate(matchDay.AddDate(0, 0, 1)), "no match on this day"},
		{"window closed", "U1", "g1 " + calendar.FormatDate(matchDay.AddDate(0, 0, 28)), "not open yet"},
		{"unknown group", "U1", "nope " + calendar.FormatDate(matchDay), "does not exist"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := server.command(t, "register-game", tc.user, tc.text)
			assert.Contains(t, body, tc.want)
		})
	}
	assert.Empty(t, server.pubsub.SendMessageCalls)
}

func TestReplacePlayerCommand(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	matchDay := server.addGroup(t, "g1", 1, 2)
	day := calendar.FormatDate(matchDay)

	server.command(t, "register-game", "U1", "g1 "+day)
	body := server.command(t, "replace-player", "U1", "g1 "+day+" <@U2|player2>")
	assert.Contains(t, body, "Player No2 takes your place")
	assert.Contains(t, body, "player #1")

	require.Len(t, server.notifier.NotifyReplacementCalls, 1)
	call := server.notifier.NotifyReplacementCalls[0]
	assert.Equal(t, "U1", call.From.ID)
	assert.Equal(t, "U2", call.To.ID)

	body = server.command(t, "replace-player", "U1", "g1 "+day+" U2")
	assert.Contains(t, body, "not registered for this date")
}

func TestOpenRegistrationCommand(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	server.addGroup(t, "g1", 1, 0)

	body := server.command(t, "open-registration", "U1", "g1")
	assert.Contains(t, body, "only the admin of this group can do that")

	body = server.command(t, "open-registration", "A1", "g1")
	assert.Contains(t, body, "cannot be opened yet")
	assert.Empty(t, server.sink.CreateSheetCalls)
}

func TestSyncCommand(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	server.addGroup(t, "g1", 1, 0)

	body := server.command(t, "sync", "U1", "g1")
	assert.Contains(t, body, "only the admin of this group can do that")
	assert.Empty(t, server.pubsub.SendMessageCalls)

	body = server.command(t, "sync", "A1", "g1")
	assert.Contains(t, body, "Sync of *Group g1* requested.")
	assert.Len(t, server.pubsub.SendMessageCalls, 1)
}

func pushRequest(t *testing.T, req pubsub.SyncRequest) *http.Request {
	t.Helper()
	data, err := pubsub.Encode(req)
	require.NoError(t, err)
	payload, err := json.Marshal(map[string]any{
		"subscription": "projects/test/subscriptions/sync-group",
		"message":      map[string]string{"data": base64.StdEncoding.EncodeToString(data)},
	})
	require.NoError(t, err)
	r, err := http.NewRequest("POST", "/pubsub/sync-group", bytes.NewReader(payload))
	require.NoError(t, err)
	return r
}

func TestSyncGroupPushHandler(t *testing.T) {
	server := setupTestServer(t, "")
	server.addGroup(t, "g1", 1, 0)

	t.Run("syncs the group", func(t *testing.T) {
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, pushRequest(t, pubsub.SyncRequest{GroupID: "g1"}))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
	})

	t.Run("acknowledges an unknown group", func(t *testing.T) {
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, pushRequest(t, pubsub.SyncRequest{GroupID: "missing"}))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/pubsub/sync-group", strings.NewReader("{"))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("asks for redelivery when the spreadsheet is unavailable", func(t *testing.T) {
		server.sink.ReadGridFunc = func(spreadsheet, sheet string) (grid.Grid, error) {
			return nil, apperrors.External(errors.New("quota exceeded"), "read grid")
		}
		defer func() { server.sink.ReadGridFunc = nil }()

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, pushRequest(t, pubsub.SyncRequest{GroupID: "g1"}))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestSyncAllHandler(t *testing.T) {
	server := setupTestServer(t, "")
	server.addGroup(t, "g1", 1, 0)

	req, err := http.NewRequest("GET", "/sync", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req, err = http.NewRequest("POST", "/sync?dry_run=true", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var report processor.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.True(t, report.DryRun)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "g1", report.Groups[0].GroupID)
	assert.Empty(t, server.sink.WriteGridCalls)
}

func TestStatsHandler(t *testing.T) {
	server := setupTestServer(t, "")
	server.addGroup(t, "g1", 1, 0)

	req, err := http.NewRequest("POST", "/sync", nil)
	require.NoError(t, err)
	server.Router.ServeHTTP(httptest.NewRecorder(), req)

	req, err = http.NewRequest("GET", "/stats", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var stats map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats[processor.CounterSyncRuns])
}
