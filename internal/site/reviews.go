package site

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/auth"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/platform/cache"
	"github.com/sakura-salon/sakura/internal/shared"
)

// ReviewFeed serves the approved reviews from cache. Reads go out without a
// session token so the cached list never depends on who asked first.
type ReviewFeed struct {
	caller *api.Caller
	cache  *cache.JSON
}

// NewReviewFeed constructs a ReviewFeed.
func NewReviewFeed(client *api.Client, c *cache.JSON) *ReviewFeed {
	return &ReviewFeed{caller: client.As(nil), cache: c}
}

// Approved returns the reviews visible on the site, newest first as the API
// orders them.
func (f *ReviewFeed) Approved(ctx context.Context) ([]api.Review, error) {
	key, err := f.cache.Key(ctx, "approved")
	if err != nil {
		return f.load(ctx)
	}
	var reviews []api.Review
	err = f.cache.Fetch(ctx, key, &reviews, func(ctx context.Context) (any, error) {
		return f.load(ctx)
	})
	return reviews, err
}

// Warm drops the cached list and loads it again.
func (f *ReviewFeed) Warm(ctx context.Context) (int, error) {
	if err := f.Invalidate(ctx); err != nil {
		return 0, err
	}
	reviews, err := f.Approved(ctx)
	if err != nil {
		return 0, err
	}
	return len(reviews), nil
}

// Invalidate drops the cached list, e.g. after a moderation change.
func (f *ReviewFeed) Invalidate(ctx context.Context) error {
	return f.cache.Bump(ctx)
}

func (f *ReviewFeed) load(ctx context.Context) ([]api.Review, error) {
	list, err := f.caller.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	if err := list.Err(); err != nil {
		return nil, err
	}
	approved := make([]api.Review, 0, len(list.Reviews))
	for _, review := range list.Reviews {
		if review.Approved {
			approved = append(approved, review)
		}
	}
	return approved, nil
}

type reviewForm struct {
	Rating  int    `validate:"min=1,max=5"`
	Comment string `validate:"required"`
}

// ReviewSubmitter handles review forms for the reviews page and the cabinet.
type ReviewSubmitter struct {
	boundary *auth.Boundary
	validate *validator.Validate
	logger   *slog.Logger
}

// NewReviewSubmitter constructs a ReviewSubmitter.
func NewReviewSubmitter(boundary *auth.Boundary, logger *slog.Logger) *ReviewSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewSubmitter{boundary: boundary, validate: validator.New(), logger: logger}
}

// ParseReview reads and checks the review form of r.
func (s *ReviewSubmitter) ParseReview(r *http.Request) (api.ReviewInput, error) {
	rating, err := strconv.Atoi(r.PostFormValue("rating"))
	if err != nil {
		return api.ReviewInput{}, fmt.Errorf("rating: %w", err)
	}
	form := reviewForm{Rating: rating, Comment: strings.TrimSpace(r.PostFormValue("comment"))}
	if err := s.validate.Struct(form); err != nil {
		return api.ReviewInput{}, err
	}
	return api.ReviewInput{Rating: form.Rating, Comment: form.Comment}, nil
}

// Submit sends the review of the signed-in visitor and redirects to back.
func (s *ReviewSubmitter) Submit(w http.ResponseWriter, r *http.Request, back string) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ac := auth.FromContext(ctx)
	if err := ac.Await(ctx); err != nil {
		return
	}
	user := ac.User()
	if user == nil {
		shared.Flash(ctx, shared.FlashError, locale.T(locale.AuthRequired))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	in, err := s.ParseReview(r)
	if err != nil {
		shared.Flash(ctx, shared.FlashError, locale.T(locale.ReviewInvalid))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	in.Author = user.FullName
	if in.Author == "" {
		in.Author = user.Email
	}

	created, err := ac.Caller().CreateReview(ctx, in)
	if err == nil {
		err = created.Err()
	}
	if err != nil {
		s.boundary.Fail(w, r, err, locale.ReviewFailed, back)
		return
	}
	s.logger.Info("review submitted", slog.Int64("user_id", user.ID), slog.Int64("review_id", created.ReviewID))
	shared.Flash(ctx, shared.FlashSuccess, locale.T(locale.ReviewSent))
	http.Redirect(w, r, back, http.StatusSeeOther)
}
