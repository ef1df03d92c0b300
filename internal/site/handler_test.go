package site_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/mail"
	"github.com/sakura-salon/sakura/internal/platform/cache"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/site"
	"github.com/sakura-salon/sakura/internal/testing/pagetest"
	_ "github.com/sakura-salon/sakura/testing"
)

type salonAPI struct {
	mu          sync.Mutex
	reviewReads atomic.Int32
	reviewsDown bool
	reviews     []api.Review
	created     []api.ReviewInput
	feedback    []api.FeedbackInput
	feedbackErr string
}

func (s *salonAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case r.URL.Path == pagetest.AuthPath:
		pagetest.CurrentUser(w, r, map[string]*api.User{"abc": pagetest.Client()})
	case r.URL.Path == pagetest.ReviewsPath && r.Method == http.MethodGet:
		s.reviewReads.Add(1)
		if s.reviewsDown {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
			return
		}
		pagetest.JSON(w, http.StatusOK, map[string]any{"reviews": s.reviews})
	case r.URL.Path == pagetest.ReviewsPath && r.Method == http.MethodPost:
		var in api.ReviewInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.created = append(s.created, in)
		pagetest.JSON(w, http.StatusOK, map[string]any{"success": true, "review_id": 11})
	case r.URL.Path == pagetest.FeedbackPath && r.Method == http.MethodPost:
		if s.feedbackErr != "" {
			pagetest.JSON(w, http.StatusOK, map[string]any{"success": false, "error": s.feedbackErr})
			return
		}
		var in api.FeedbackInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.feedback = append(s.feedback, in)
		pagetest.JSON(w, http.StatusOK, map[string]any{"success": true, "feedback_id": 3})
	default:
		http.NotFound(w, r)
	}
}

func (s *salonAPI) createdReviews() []api.ReviewInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.ReviewInput(nil), s.created...)
}

func (s *salonAPI) sentFeedback() []api.FeedbackInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.FeedbackInput(nil), s.feedback...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []mail.FeedbackNotice
}

func (n *recordingNotifier) FeedbackReceived(_ context.Context, notice mail.FeedbackNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

type fixture struct {
	env      *pagetest.Env
	api      *salonAPI
	router   chi.Router
	notifier *recordingNotifier
	feed     *site.ReviewFeed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stub := &salonAPI{reviews: []api.Review{
		{ID: 1, Author: "Елена", Rating: 5, Comment: "Лучший салон в городе", Approved: true},
		{ID: 2, Author: "Спамер", Rating: 1, Comment: "Скрытый отзыв", Approved: false},
	}}
	env := pagetest.New(t, stub.ServeHTTP)
	feed := site.NewReviewFeed(env.API, cache.NewJSON(env.Client, "reviews", time.Minute))
	notifier := &recordingNotifier{}
	handler := site.NewHandler(env.Templates, env.Shell, env.Boundary, feed, site.NewReviewSubmitter(env.Boundary, nil), notifier, nil)
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return &fixture{env: env, api: stub, router: router, notifier: notifier, feed: feed}
}

func messages(flashes []shared.FlashMessage) []string {
	out := make([]string, 0, len(flashes))
	for _, f := range flashes {
		out = append(out, f.Message)
	}
	return out
}

func TestStaticPagesRender(t *testing.T) {
	f := newFixture(t)
	cases := map[string]string{
		"/":                         "Сакура",
		"/services":                 site.Services()[0].Title,
		"/masters":                  site.Masters()[0].Name,
		"/price":                    site.PriceList()[0].Name,
		"/gallery":                  site.Gallery()[0].Name,
		"/gallery?category=unknown": site.Gallery()[0].Items[0].Title,
		"/contacts":                 site.Contacts().Phone,
	}
	for target, want := range cases {
		t.Run(target, func(t *testing.T) {
			visit := f.env.Visit(t, http.MethodGet, target, nil, "", nil)
			res := visit.Serve(f.router)
			require.Equal(t, http.StatusOK, res.Code)
			assert.Contains(t, res.Body.String(), want)
		})
	}
}

func TestReviewsShowApprovedOnlyAndAreCached(t *testing.T) {
	f := newFixture(t)

	for range 2 {
		visit := f.env.Visit(t, http.MethodGet, "/reviews", nil, "", nil)
		res := visit.Serve(f.router)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "Лучший салон в городе")
		assert.NotContains(t, res.Body.String(), "Скрытый отзыв")
	}
	assert.EqualValues(t, 1, f.api.reviewReads.Load())

	count, err := f.feed.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.EqualValues(t, 2, f.api.reviewReads.Load())
}

func TestReviewsLoadFailureShowsNotice(t *testing.T) {
	f := newFixture(t)
	f.api.reviewsDown = true

	visit := f.env.Visit(t, http.MethodGet, "/reviews", nil, "", nil)
	res := visit.Serve(f.router)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), locale.T(locale.NetworkError))
}

func TestSubmitReviewRequiresSignedInVisitor(t *testing.T) {
	f := newFixture(t)

	visit := f.env.Visit(t, http.MethodPost, "/reviews", url.Values{"rating": {"5"}, "comment": {"Отлично"}}, "", nil)
	res := visit.Serve(f.router)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/reviews", res.Header().Get("Location"))
	assert.Equal(t, []string{locale.T(locale.AuthRequired)}, messages(visit.Flashes()))
	assert.Empty(t, f.api.createdReviews())
}

func TestSubmitReviewUsesAccountName(t *testing.T) {
	f := newFixture(t)

	visit := f.env.Visit(t, http.MethodPost, "/reviews", url.Values{"rating": {"4"}, "comment": {" Очень понравилось "}}, "abc", pagetest.Client())
	res := visit.Serve(f.router)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, []string{locale.T(locale.ReviewSent)}, messages(visit.Flashes()))
	created := f.api.createdReviews()
	require.Len(t, created, 1)
	assert.Equal(t, api.ReviewInput{Author: "Анна Петрова", Rating: 4, Comment: "Очень понравилось"}, created[0])
}

func TestSubmitReviewRejectsOutOfRangeRating(t *testing.T) {
	f := newFixture(t)

	visit := f.env.Visit(t, http.MethodPost, "/reviews", url.Values{"rating": {"7"}, "comment": {"Хорошо"}}, "abc", pagetest.Client())
	res := visit.Serve(f.router)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, []string{locale.T(locale.ReviewInvalid)}, messages(visit.Flashes()))
	assert.Empty(t, f.api.createdReviews())
}

func TestFeedbackRequiresFields(t *testing.T) {
	f := newFixture(t)

	visit := f.env.Visit(t, http.MethodPost, "/contacts", url.Values{"name": {"Ольга"}, "message": {"Перезвоните"}}, "", nil)
	res := visit.Serve(f.router)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), locale.T(locale.FeedbackRequired))
	assert.Contains(t, res.Body.String(), "Перезвоните")
	assert.Empty(t, f.api.sentFeedback())
}

func TestFeedbackIsSentAndAnnounced(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"name": {"Ольга"}, "phone": {"+7 999 111-22-33"}, "message": {"Перезвоните"}}
	visit := f.env.Visit(t, http.MethodPost, "/contacts", form, "", nil)
	res := visit.Serve(f.router)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/contacts", res.Header().Get("Location"))
	assert.Equal(t, []string{locale.T(locale.FeedbackSent)}, messages(visit.Flashes()))
	require.Len(t, f.notifier.notices, 1)
	assert.Equal(t, int64(3), f.notifier.notices[0].FeedbackID)
	assert.Equal(t, "Ольга", f.notifier.notices[0].Feedback.Name)
}

func TestFeedbackRejectionSurfacesServerMessage(t *testing.T) {
	f := newFixture(t)
	f.api.feedbackErr = "Слишком много сообщений"

	form := url.Values{"name": {"Ольга"}, "phone": {"+7"}, "message": {"Привет"}}
	visit := f.env.Visit(t, http.MethodPost, "/contacts", form, "", nil)
	res := visit.Serve(f.router)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, []string{"Слишком много сообщений"}, messages(visit.Flashes()))
	assert.Empty(t, f.notifier.notices)
}
