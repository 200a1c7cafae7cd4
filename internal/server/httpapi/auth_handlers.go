package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/miniblog/internal/server/models"
	"github.com/dmitrijs2005/miniblog/internal/server/services"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Success bool               `json:"success"`
	User    *models.PublicUser `json:"user"`
}

type usersResponse struct {
	Success bool                `json:"success"`
	Users   []models.PublicUser `json:"users"`
}

type okResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeOrReject(w, r, &req) {
		return
	}

	user, token, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	s.metrics.authEvent("register", err)
	if err != nil {
		writeError(w, err)
		return
	}

	s.cookies.Attach(w, token)
	p := user.Public()
	writeJSON(w, http.StatusCreated, userResponse{Success: true, User: &p})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeOrReject(w, r, &req) {
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	s.metrics.authEvent("login", err)
	if err != nil {
		writeError(w, err)
		return
	}

	s.cookies.Attach(w, token)
	p := user.Profile()
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: &p})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.cookies.Clear(w)
	s.metrics.authEvent("logout", nil)
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

// me never fails: anything short of a live session reads as "signed out".
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Me(r.Context(), s.cookies.Read(r))
	if err != nil || user == nil {
		writeJSON(w, http.StatusOK, userResponse{Success: false, User: nil})
		return
	}
	p := user.Profile()
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: &p})
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var patch services.ProfilePatch
	if !decodeOrReject(w, r, &patch) {
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), claimsFrom(r.Context()), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	p := user.Profile()
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: &p})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListAuthors(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), usersResponse{Success: false, Users: []models.PublicUser{}})
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Success: true, Users: users})
}
