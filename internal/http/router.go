package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"firebase.google.com/go/v4/auth"

	"screenrent/backend/internal/config"
	"screenrent/backend/internal/domain/account"
	"screenrent/backend/internal/domain/analytics"
	"screenrent/backend/internal/domain/booking"
	"screenrent/backend/internal/domain/content"
	"screenrent/backend/internal/domain/like"
	"screenrent/backend/internal/domain/review"
	"screenrent/backend/internal/domain/screen"
	"screenrent/backend/internal/domain/user"
	"screenrent/backend/internal/ids"
	"screenrent/backend/internal/middleware"
)

type RouterDeps struct {
	Cfg          config.Config
	AuthClient   *auth.Client
	UserRepo     *user.Repo
	ScreenSvc    *screen.Service
	BookingSvc   *booking.Service
	AccountSvc   *account.Service
	Webhook      *account.Webhook
	ReviewSvc    *review.Service
	LikeSvc      *like.Service
	ContentSvc   *content.Service
	Uploader     *content.Uploader
	AnalyticsSvc *analytics.Service
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// ===== Stripe Webhook (no auth required) =====
	if d.Webhook != nil {
		r.Post("/v1/stripe/webhook", d.Webhook.HandleWebhook)
	}

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.AuthClient))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			uid := ids.NewUserID(au.UID)

			// Make sure a profile document exists the first time we see
			// this principal.
			_ = d.UserRepo.UpsertMinimal(r.Context(), uid, au.Email)

			p, err := d.UserRepo.Get(r.Context(), uid)
			if err != nil {
				Fail(w, 500, "failed to load profile")
				return
			}
			WriteJSON(w, 200, p)
		})

		pr.Put("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in struct {
				DisplayName *string `json:"displayName"`
				UserType    *string `json:"userType"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			updates := map[string]any{}
			if in.DisplayName != nil {
				updates["displayName"] = strings.TrimSpace(*in.DisplayName)
			}
			if in.UserType != nil {
				if !user.IsValidUserType(*in.UserType) {
					Fail(w, 400, "userType must be owner, creator or both")
					return
				}
				updates["userType"] = *in.UserType
			}
			if len(updates) == 0 {
				Fail(w, 400, "nothing to update")
				return
			}

			if err := d.UserRepo.UpdateProfile(r.Context(), ids.NewUserID(au.UID), updates); err != nil {
				Fail(w, 500, "failed to update profile")
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true})
		})

		// ===== Connected-account lifecycle =====
		pr.Post("/v1/connect/accounts", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in account.CreateAccountInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if in.Email == "" {
				in.Email = au.Email
			}

			accountID, err := d.AccountSvc.CreateConnectAccount(r.Context(), ids.NewUserID(au.UID), in)
			if err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, map[string]any{"accountId": accountID, "success": true})
		})

		pr.Post("/v1/connect/account-links", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in account.CreateAccountLinkInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			url, err := d.AccountSvc.CreateAccountLink(r.Context(), ids.NewUserID(au.UID), in)
			if err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"url": url, "success": true})
		})

		pr.Get("/v1/connect/accounts/{accountId}/status", func(w http.ResponseWriter, r *http.Request) {
			accountID := ids.NewAccountID(chi.URLParam(r, "accountId"))

			st, err := d.AccountSvc.GetAccountStatus(r.Context(), accountID)
			if err != nil {
				status, msg := mapAccountError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{
				"accountId":        st.AccountID,
				"chargesEnabled":   st.ChargesEnabled,
				"payoutsEnabled":   st.PayoutsEnabled,
				"detailsSubmitted": st.DetailsSubmitted,
				"requirements":     st.RequirementsDue,
				"success":          true,
			})
		})

		// ===== Payment hold =====
		pr.Post("/v1/payments/intents", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in booking.CreateIntentInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.BookingSvc.CreatePaymentIntent(r.Context(), ids.NewUserID(au.UID), in)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, map[string]any{
				"clientSecret":    out.ClientSecret,
				"paymentIntentId": out.PaymentIntentID,
				"success":         true,
			})
		})

		// ===== Booking state machine =====
		pr.Post("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in booking.CreateBookingInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.BookingSvc.Create(r.Context(), ids.NewUserID(au.UID), in)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Get("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			role := r.URL.Query().Get("role")
			if role == "" {
				role = "renter"
			}
			limit := 50
			if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
				if n, err := strconv.Atoi(limitStr); err == nil {
					limit = n
				}
			}

			out, err := d.BookingSvc.ListForUser(r.Context(), ids.NewUserID(au.UID), role, limit)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"bookings": out})
		})

		pr.Get("/v1/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			bookingID := ids.NewBookingID(chi.URLParam(r, "bookingId"))

			out, err := d.BookingSvc.Get(r.Context(), ids.NewUserID(au.UID), bookingID)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Post("/v1/bookings/{bookingId}/accept", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			bookingID := ids.NewBookingID(chi.URLParam(r, "bookingId"))

			out, err := d.BookingSvc.Accept(r.Context(), ids.NewUserID(au.UID), bookingID)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{
				"success":         true,
				"paymentIntentId": out.PaymentIntentID,
				"status":          out.Status,
			})
		})

		pr.Post("/v1/bookings/{bookingId}/decline", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			bookingID := ids.NewBookingID(chi.URLParam(r, "bookingId"))

			out, err := d.BookingSvc.Decline(r.Context(), ids.NewUserID(au.UID), bookingID)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			resp := map[string]any{"success": true, "status": out.Status}
			if out.PaymentIntentID != "" {
				resp["paymentIntentId"] = out.PaymentIntentID
			}
			WriteJSON(w, 200, resp)
		})

		pr.Post("/v1/bookings/{bookingId}/cancel", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			bookingID := ids.NewBookingID(chi.URLParam(r, "bookingId"))

			var in struct {
				Reason string `json:"reason"`
			}
			if r.Body != nil {
				_ = json.NewDecoder(r.Body).Decode(&in)
			}

			out, err := d.BookingSvc.Cancel(r.Context(), ids.NewUserID(au.UID), bookingID, strings.TrimSpace(in.Reason))
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			resp := map[string]any{"success": true, "status": out.Status}
			if out.RefundID != "" {
				resp["refundId"] = out.RefundID
			}
			WriteJSON(w, 200, resp)
		})

		// ===== Screens =====
		pr.Post("/v1/screens", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in screen.CreateScreenInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.ScreenSvc.Create(r.Context(), ids.NewUserID(au.UID), in)
			if err != nil {
				status, msg := mapScreenError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Get("/v1/screens/search", func(w http.ResponseWriter, r *http.Request) {
			q := strings.TrimSpace(r.URL.Query().Get("q"))
			out, err := d.ScreenSvc.Search(r.Context(), q, 20)
			if err != nil {
				status, msg := mapScreenError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"screens": out})
		})

		pr.Get("/v1/screens", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			ownerID := ids.NewUserID(r.URL.Query().Get("ownerId"))
			if ownerID == "" {
				ownerID = ids.NewUserID(au.UID)
			}
			activeOnly := r.URL.Query().Get("activeOnly") == "true"

			out, err := d.ScreenSvc.ListByOwner(r.Context(), ownerID, activeOnly)
			if err != nil {
				status, msg := mapScreenError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"screens": out})
		})

		pr.Get("/v1/screens/{screenId}", func(w http.ResponseWriter, r *http.Request) {
			screenID := ids.NewScreenID(chi.URLParam(r, "screenId"))

			out, err := d.ScreenSvc.Get(r.Context(), screenID)
			if err != nil {
				status, msg := mapScreenError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Put("/v1/screens/{screenId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			screenID := ids.NewScreenID(chi.URLParam(r, "screenId"))

			var in screen.UpdateScreenInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.ScreenSvc.Update(r.Context(), ids.NewUserID(au.UID), screenID, in)
			if err != nil {
				status, msg := mapScreenError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Delete("/v1/screens/{screenId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			screenID := ids.NewScreenID(chi.URLParam(r, "screenId"))

			if err := d.ScreenSvc.Deactivate(r.Context(), ids.NewUserID(au.UID), screenID); err != nil {
				status, msg := mapScreenError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true, "deactivated": screenID})
		})

		// ===== Reviews =====
		pr.Post("/v1/screens/{screenId}/reviews", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			screenID := ids.NewScreenID(chi.URLParam(r, "screenId"))

			var in review.CreateReviewInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.ReviewSvc.Create(r.Context(), ids.NewUserID(au.UID), screenID, in)
			if err != nil {
				status, msg := mapReviewError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Get("/v1/screens/{screenId}/reviews", func(w http.ResponseWriter, r *http.Request) {
			screenID := ids.NewScreenID(chi.URLParam(r, "screenId"))

			out, err := d.ReviewSvc.ListByScreen(r.Context(), screenID, 50)
			if err != nil {
				status, msg := mapReviewError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"reviews": out})
		})

		// ===== Likes (wishlist) =====
		pr.Put("/v1/likes/{screenId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			screenID := ids.NewScreenID(chi.URLParam(r, "screenId"))

			if err := d.LikeSvc.Like(r.Context(), ids.NewUserID(au.UID), screenID); err != nil {
				if like.IsErrBadRequest(err) {
					Fail(w, 400, err.Error())
					return
				}
				Fail(w, 500, err.Error())
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true})
		})

		pr.Delete("/v1/likes/{screenId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			screenID := ids.NewScreenID(chi.URLParam(r, "screenId"))

			if err := d.LikeSvc.Unlike(r.Context(), ids.NewUserID(au.UID), screenID); err != nil {
				if like.IsErrBadRequest(err) {
					Fail(w, 400, err.Error())
					return
				}
				Fail(w, 500, err.Error())
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true})
		})

		pr.Get("/v1/likes", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			out, err := d.LikeSvc.List(r.Context(), ids.NewUserID(au.UID))
			if err != nil {
				Fail(w, 500, err.Error())
				return
			}
			WriteJSON(w, 200, map[string]any{"screenIds": out})
		})

		// ===== Content =====
		pr.Post("/v1/content", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in content.CreateContentInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.ContentSvc.Create(r.Context(), ids.NewUserID(au.UID), in)
			if err != nil {
				status, msg := mapContentError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Get("/v1/content", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			out, err := d.ContentSvc.ListByOwner(r.Context(), ids.NewUserID(au.UID), 50)
			if err != nil {
				status, msg := mapContentError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"content": out})
		})

		pr.Get("/v1/content/{contentId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			contentID := ids.NewContentID(chi.URLParam(r, "contentId"))

			out, err := d.ContentSvc.Get(r.Context(), ids.NewUserID(au.UID), contentID)
			if err != nil {
				status, msg := mapContentError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Post("/v1/uploads/signed-url", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in struct {
				ObjectPath     string `json:"objectPath"`
				ContentType    string `json:"contentType"`
				ExpiresSeconds int64  `json:"expiresSeconds"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			// Uploads stay inside the caller's own prefix.
			prefix := "content/" + au.UID + "/"
			if !strings.HasPrefix(in.ObjectPath, prefix) {
				Fail(w, 403, "objectPath must start with "+prefix)
				return
			}

			out, err := d.Uploader.SignedURL(r.Context(), in.ObjectPath, in.ContentType, in.ExpiresSeconds)
			if err != nil {
				if content.IsErrBadRequest(err) {
					Fail(w, 400, err.Error())
					return
				}
				Fail(w, 500, err.Error())
				return
			}
			WriteJSON(w, 200, out)
		})

		// ===== Analytics (owner dashboard) =====
		pr.Get("/v1/analytics/daily", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			from := r.URL.Query().Get("from")
			to := r.URL.Query().Get("to")

			out, err := d.AnalyticsSvc.ListRange(r.Context(), ids.NewUserID(au.UID), from, to)
			if err != nil {
				if analytics.IsErrBadRequest(err) {
					Fail(w, 400, err.Error())
					return
				}
				Fail(w, 500, err.Error())
				return
			}
			WriteJSON(w, 200, map[string]any{"days": out})
		})
	})

	return r
}

func mapBookingError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case booking.IsErrUnauthorized(err):
		return 403, err.Error()
	case booking.IsErrNotFound(err):
		return 404, err.Error()
	case booking.IsErrBadRequest(err):
		return 400, err.Error()
	case booking.IsErrFailedPrecondition(err):
		return 412, err.Error()
	case booking.IsErrConflict(err):
		return 409, err.Error()
	case booking.IsErrPayment(err):
		return 500, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapScreenError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case screen.IsErrUnauthorized(err):
		return 403, err.Error()
	case screen.IsErrNotFound(err):
		return 404, err.Error()
	case screen.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapAccountError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case account.IsErrNotFound(err):
		return 404, err.Error()
	case account.IsErrBadRequest(err):
		return 400, err.Error()
	case account.IsErrPayment(err):
		return 500, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapReviewError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case review.IsErrUnauthorized(err):
		return 403, err.Error()
	case review.IsErrNotFound(err):
		return 404, err.Error()
	case review.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapContentError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case content.IsErrUnauthorized(err):
		return 403, err.Error()
	case content.IsErrNotFound(err):
		return 404, err.Error()
	case content.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}
