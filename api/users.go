package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/errors"
	"github.com/surveypro/saas-backend/stats"
)

// registerUserHandler godoc
// @Summary Register a new user
// @Description Sign a survey taker up, open their session and return a JWT
// @Description token.
// @Tags users
// @Accept json
// @Produce json
// @Param request body apicommon.RegisterUserRequest true "User information"
// @Success 200 {object} apicommon.UserLoginResponse
// @Failure 400 {object} errors.Error "Invalid input data"
// @Failure 409 {object} errors.Error "Email already registered"
// @Router /users [post]
func (a *API) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	req, err := bodyFromContext[apicommon.RegisterUserRequest](a, r)
	if err != nil {
		writeError(w, err)
		return
	}
	email, err := normalizedEmail(req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := a.users.RegisterUser(req.Name, email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	a.writeUserLogin(w, user)
}

// userLoginHandler godoc
// @Summary Login a user
// @Description Authenticate a survey taker by email and get a JWT token
// @Tags users
// @Accept json
// @Produce json
// @Param request body apicommon.LoginRequest true "Login credentials"
// @Success 200 {object} apicommon.UserLoginResponse
// @Failure 401 {object} errors.Error
// @Router /users/login [post]
func (a *API) userLoginHandler(w http.ResponseWriter, r *http.Request) {
	req, err := bodyFromContext[apicommon.LoginRequest](a, r)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := a.users.LoginUser(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			errors.ErrInvalidCredentials.Write(w)
			return
		}
		writeError(w, err)
		return
	}
	a.writeUserLogin(w, user)
}

func (a *API) writeUserLogin(w http.ResponseWriter, user *db.User) {
	res, err := a.buildLoginResponse(apicommon.UserIDClaim, user.ID)
	if err != nil {
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.UserLoginResponse{LoginResponse: *res, User: user})
}

// userLogoutHandler godoc
// @Summary Logout a user
// @Tags users
// @Security BearerAuth
// @Success 200 {string} string "OK"
// @Router /users/logout [post]
func (a *API) userLogoutHandler(w http.ResponseWriter, _ *http.Request) {
	a.users.Logout()
	apicommon.HTTPWriteOK(w)
}

// userProfileHandler godoc
// @Summary Get the user profile
// @Description Get the logged user and their dashboard counters
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} apicommon.UserProfile
// @Router /users/me [get]
func (a *API) userProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUserUnauthorized.Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.UserProfile{
		User:      user,
		Dashboard: stats.ForUser(user, a.surveys.Surveys(), stats.AvailableTab, ""),
	})
}

// userDashboardHandler godoc
// @Summary Get the user dashboard
// @Description Get the available, favorite or completed surveys of the
// @Description logged user, optionally filtered by a search term.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param tab query string false "available, favorites or completed"
// @Param search query string false "Search over title, description and company"
// @Success 200 {object} stats.UserDashboard
// @Router /users/me/dashboard [get]
func (a *API) userDashboardHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUserUnauthorized.Write(w)
		return
	}
	query := r.URL.Query()
	apicommon.HTTPWriteJSON(w, stats.ForUser(user, a.surveys.Surveys(),
		stats.ParseTab(query.Get("tab")), query.Get("search")))
}

// toggleFavoriteHandler godoc
// @Summary Toggle a favorite survey
// @Description Add the survey to the favorites of the logged user, or remove
// @Description it if it already was one.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param surveyId path string true "Survey ID"
// @Success 200 {object} apicommon.FavoriteResponse
// @Failure 404 {object} errors.Error "Survey not found"
// @Router /users/me/favorites/{surveyId} [put]
func (a *API) toggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUserUnauthorized.Write(w)
		return
	}
	surveyID := chi.URLParam(r, "surveyId")
	if _, err := a.surveys.Survey(surveyID); err != nil {
		writeError(w, err)
		return
	}
	favorite, err := a.users.ToggleFavoriteFor(user.ID, surveyID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			errors.ErrUserNotFound.Write(w)
			return
		}
		writeError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.FavoriteResponse{SurveyID: surveyID, Favorite: favorite})
}
