package http

import (
	"net/http"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type profileRequest struct {
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phone_number"`
	AvatarURL   *string `json:"avatar_url"`
}

type registerResponse struct {
	Message string    `json:"message"`
	User    core.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.svc.Accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentAuth, log.OpRegister, user.ID, 0, "USER", user.ID)

	_ = NewJSONResponse().Status(http.StatusCreated).Body(registerResponse{
		Message: "registration successful, check your emails to activate your account",
		User:    user,
	}).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.svc.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(session).Write(w)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.Accounts.VerifyEmail(r.Context(), req.Token); err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Message("account verified, you can now log in").Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	user, err := s.svc.Accounts.Profile(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(user).Write(w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.svc.Accounts.UpdateProfile(r.Context(), actor, services.ProfileInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(user).Write(w)
}
