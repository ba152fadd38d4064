package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/iliyamo/doulacare/internal/model"
	"github.com/iliyamo/doulacare/internal/repository"
	"github.com/iliyamo/doulacare/internal/testutil"
)

func newCommunityServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	bookings := repository.NewBookingRepo(db)
	rh := NewReviewHandler(repository.NewReviewRepo(db), bookings)
	fh := NewFavouriteHandler(repository.NewFavouriteRepo(db), users)
	mh := NewMessageHandler(repository.NewMessageRepo(db), users)

	e := echo.New()
	e.GET("/reviews/can-review", rh.CanReview)
	e.POST("/reviews", rh.Create)
	e.GET("/reviews/by-doula/:id", rh.ByDoula)
	e.POST("/favourites/by-mother-auth/:uuid/toggle", fh.Toggle)
	e.GET("/favourites/by-mother-auth/:uuid/details", fh.Details)
	e.POST("/messages/send", mh.Send)
	e.GET("/messages/thread", mh.Thread)
	e.GET("/messages/unread-count", mh.UnreadCount)
	e.POST("/messages/mark-read", mh.MarkRead)
	e.GET("/messages/threads", mh.Threads)
	e.GET("/messages/inbox", mh.Inbox)
	return e, db
}

func TestReviewFlow(t *testing.T) {
	t.Parallel()
	e, db := newCommunityServer(t)
	m := testutil.User(t, db, model.RoleMother, "Mia")
	d := testutil.User(t, db, model.RoleDoula, "Dana")
	confirmed := testutil.Booking(t, db, m, d, model.StatusConfirmed)
	canReview := fmt.Sprintf("/reviews/can-review?mother_id=%d&doula_id=%d", m.ID, d.ID)

	var can struct {
		CanReview bool    `json:"can_review"`
		BookingID *uint64 `json:"booking_id"`
	}
	rec := do(e, http.MethodGet, canReview, "")
	expect(t, rec, http.StatusOK, "")
	decode(t, rec, &can)
	if can.CanReview || can.BookingID != nil {
		t.Errorf("before payment: got %+v", can)
	}

	expect(t, do(e, http.MethodPost, "/reviews", fmt.Sprintf(`{"booking_id":%d,"rating":5}`, confirmed.ID)),
		http.StatusForbidden, "You can only review after a paid booking.")
	expect(t, do(e, http.MethodPost, "/reviews", `{"booking_id":9999,"rating":5}`), http.StatusNotFound, "Booking not found")
	expect(t, do(e, http.MethodPost, "/reviews", fmt.Sprintf(`{"booking_id":%d,"rating":6}`, confirmed.ID)),
		http.StatusBadRequest, "rating must be between 1 and 5")

	paid := testutil.Booking(t, db, m, d, model.StatusPaid)
	rec = do(e, http.MethodGet, canReview, "")
	decode(t, rec, &can)
	if !can.CanReview || can.BookingID == nil || *can.BookingID != paid.ID {
		t.Errorf("after payment: got %+v", can)
	}
	expect(t, do(e, http.MethodPost, "/reviews", fmt.Sprintf(`{"booking_id":%d,"rating":4,"comment":"calm"}`, paid.ID)), http.StatusOK, "")

	rec = do(e, http.MethodGet, fmt.Sprintf("/reviews/by-doula/%d", d.ID), "")
	expect(t, rec, http.StatusOK, "")
	var reviews []publicReview
	decode(t, rec, &reviews)
	if len(reviews) != 1 || reviews[0].Rating != 4 || reviews[0].Comment == nil || *reviews[0].Comment != "calm" {
		t.Errorf("reviews: got %+v", reviews)
	}
}

func TestFavouriteToggleEndpoint(t *testing.T) {
	t.Parallel()
	e, db := newCommunityServer(t)
	m := testutil.User(t, db, model.RoleMother, "Mia")
	d := testutil.User(t, db, model.RoleDoula, "Dana")
	toggle := "/favourites/by-mother-auth/" + m.AuthID.String() + "/toggle"
	body := fmt.Sprintf(`{"doula_id":%d}`, d.ID)

	var got struct {
		Favourited bool `json:"favourited"`
	}
	rec := do(e, http.MethodPost, toggle, body)
	expect(t, rec, http.StatusOK, "")
	decode(t, rec, &got)
	if !got.Favourited {
		t.Error("first toggle: want favourited")
	}

	rec = do(e, http.MethodGet, "/favourites/by-mother-auth/"+m.AuthID.String()+"/details", "")
	var cards []favouriteCard
	decode(t, rec, &cards)
	if len(cards) != 1 || cards[0].DoulaName != "Dana" || cards[0].Price != 50 {
		t.Errorf("details: got %+v", cards)
	}

	rec = do(e, http.MethodPost, toggle, body)
	decode(t, rec, &got)
	if got.Favourited {
		t.Error("second toggle: want not favourited")
	}

	expect(t, do(e, http.MethodPost, toggle, fmt.Sprintf(`{"doula_id":%d}`, m.ID)), http.StatusNotFound, "Doula not found")
	expect(t, do(e, http.MethodPost, "/favourites/by-mother-auth/"+d.AuthID.String()+"/toggle", body), http.StatusNotFound, "Mother not found")
}

func TestMessagingEndpoints(t *testing.T) {
	t.Parallel()
	e, db := newCommunityServer(t)
	m := testutil.User(t, db, model.RoleMother, "Mia")
	d := testutil.User(t, db, model.RoleDoula, "Dana")
	send := func(from model.User, role string, to model.User, text string) {
		t.Helper()
		target := fmt.Sprintf("/messages/send?sender_auth_id=%s&sender_role=%s", from.AuthID, role)
		expect(t, do(e, http.MethodPost, target, fmt.Sprintf(`{"receiver_auth_id":%q,"text":%q}`, to.AuthID.String(), text)), http.StatusOK, "")
	}
	send(m, model.RoleMother, d, "hello")
	send(d, model.RoleDoula, m, "hi there")
	send(d, model.RoleDoula, m, "  when suits you?  ")

	// Rejections.
	expect(t, do(e, http.MethodPost, fmt.Sprintf("/messages/send?sender_auth_id=%s&sender_role=mother", m.AuthID),
		fmt.Sprintf(`{"receiver_auth_id":%q,"text":"   "}`, d.AuthID.String())), http.StatusBadRequest, "text is required")
	expect(t, do(e, http.MethodPost, fmt.Sprintf("/messages/send?sender_auth_id=%s&sender_role=doula", m.AuthID),
		fmt.Sprintf(`{"receiver_auth_id":%q,"text":"x"}`, d.AuthID.String())), http.StatusNotFound, "Sender not found")

	var count struct {
		Count int `json:"count"`
	}
	unread := fmt.Sprintf("/messages/unread-count?user_auth_id=%s&role=mother", m.AuthID)
	decode(t, do(e, http.MethodGet, unread, ""), &count)
	if count.Count != 2 {
		t.Errorf("mother unread: got %d, want 2", count.Count)
	}

	rec := do(e, http.MethodGet, fmt.Sprintf("/messages/inbox?user_auth_id=%s&role=mother", m.AuthID), "")
	expect(t, rec, http.StatusOK, "")
	var inbox []inboxEntry
	decode(t, rec, &inbox)
	if len(inbox) != 1 {
		t.Fatalf("inbox: got %d entries, want 1", len(inbox))
	}
	if inbox[0].OtherName != "Dana" || inbox[0].LastText != "when suits you?" || inbox[0].UnreadCount != 2 {
		t.Errorf("inbox entry: got %+v", inbox[0])
	}
	if want := m.AuthID.String() + "-" + d.AuthID.String(); inbox[0].ThreadKey != want {
		t.Errorf("thread key: got %q, want %q", inbox[0].ThreadKey, want)
	}

	rec = do(e, http.MethodPost, "/messages/mark-read",
		fmt.Sprintf(`{"mother_auth_id":%q,"doula_auth_id":%q,"role":"mother"}`, m.AuthID.String(), d.AuthID.String()))
	expect(t, rec, http.StatusOK, "")
	decode(t, do(e, http.MethodGet, unread, ""), &count)
	if count.Count != 0 {
		t.Errorf("unread after mark-read: got %d, want 0", count.Count)
	}

	rec = do(e, http.MethodGet, fmt.Sprintf("/messages/thread?mother_auth_id=%s&doula_auth_id=%s", m.AuthID, d.AuthID), "")
	var thread []threadMessage
	decode(t, rec, &thread)
	if len(thread) != 3 || thread[0].Text != "hello" || thread[0].SenderRole != model.RoleMother {
		t.Errorf("thread: got %+v", thread)
	}

	rec = do(e, http.MethodGet, fmt.Sprintf("/messages/threads?user_auth_id=%s&role=doula", d.AuthID), "")
	var threads []threadSummary
	decode(t, rec, &threads)
	if len(threads) != 1 || threads[0].OtherName != "Mia" || threads[0].OtherRole != model.RoleMother || threads[0].UnreadCount != 1 {
		t.Errorf("threads: got %+v", threads)
	}

	expect(t, do(e, http.MethodGet, "/messages/inbox?user_auth_id=nope&role=mother", ""), http.StatusBadRequest, "")
	expect(t, do(e, http.MethodGet, fmt.Sprintf("/messages/unread-count?user_auth_id=%s&role=admin", m.AuthID), ""), http.StatusBadRequest, "Invalid role")
}
