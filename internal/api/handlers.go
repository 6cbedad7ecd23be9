package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/logiops360/logiops-cli/internal/anomaly"
	"github.com/logiops360/logiops-cli/internal/delay"
	"github.com/logiops360/logiops-cli/internal/predict"
	"github.com/logiops360/logiops-cli/internal/session"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

type sessionResponse struct {
	Signed bool          `json:"signed_in"`
	User   *session.User `json:"user,omitempty"`
	// ExpiresAt is the token's exp claim in RFC 3339, when present.
	ExpiresAt string `json:"expires_at,omitempty"`
}

func newSessionResponse(s *session.Session) sessionResponse {
	out := sessionResponse{Signed: true, User: &s.User}
	if c, err := session.ParseClaims(s.Token); err == nil {
		if exp, ok := c.Expiry(); ok {
			out.ExpiresAt = exp.UTC().Format(time.RFC3339)
		}
	}
	return out
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Current(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			writeJSON(w, http.StatusOK, sessionResponse{})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds logiops.Credentials
	if err := decode(r, &creds); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.sessions.Login(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	s.board.SetToken(r.Context(), sess.Token)
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req logiops.SignupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.sessions.Signup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	s.board.SetToken(r.Context(), sess.Token)
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.board.SetToken(r.Context(), "")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v, err := s.board.Load(r.Context(), chi.URLParam(r, "profile"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleDelayList reloads the list and applies the risk filter. An omitted
// filter shows every risk.
func (s *Server) handleDelayList(w http.ResponseWriter, r *http.Request) {
	f, err := delay.ParseFilter(r.URL.Query().Get("risk"))
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	if err := s.board.Delay.Load(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if err := s.board.Delay.SetFilter(f); err != nil {
		writeError(w, badRequest(err))
		return
	}
	writeJSON(w, http.StatusOK, s.board.Delay.View())
}

func (s *Server) handleDelayExpand(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Delay.Expand(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.board.Delay.View())
}

func (s *Server) handleDelayDetail(w http.ResponseWriter, r *http.Request) {
	d, err := s.board.Delay.Detail(r.Context(), chi.URLParam(r, "shipmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, delay.NewDetailView(d))
}

func (s *Server) handleAnomalyList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sev, err := anomaly.ParseSeverity(q.Get("severity"))
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	bucket, err := anomaly.ParseBucket(q.Get("count"))
	if err != nil {
		writeError(w, badRequest(err))
		return
	}

	a := s.board.Anomaly
	if err := a.Load(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if err := a.SetSeverity(sev); err != nil {
		writeError(w, badRequest(err))
		return
	}
	if err := a.SetCountBucket(bucket); err != nil {
		writeError(w, badRequest(err))
		return
	}
	writeJSON(w, http.StatusOK, a.View())
}

func (s *Server) handleAnomalyExpand(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Anomaly.Expand(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.board.Anomaly.View())
}

type anomalyDetailResponse struct {
	*anomaly.Detail
	Mailto string `json:"mailto"`
}

func (s *Server) handleAnomalyDetail(w http.ResponseWriter, r *http.Request) {
	d, err := s.board.Anomaly.DetailFor(r.Context(), chi.URLParam(r, "shipmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, anomalyDetailResponse{Detail: d, Mailto: d.Email.MailtoURL()})
}

func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	s.board.KPI.Start(r.Context(), s.board.Token())
	writeJSON(w, http.StatusOK, s.board.KPI.Snapshot())
}

func (s *Server) handleETAOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.board.ETA.Options(r.Context(), s.board.Token())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

type etaPredictResponse struct {
	EtaHours *float64 `json:"eta_hours"`
}

func (s *Server) handleETAPredict(w http.ResponseWriter, r *http.Request) {
	form := predict.DefaultETAForm()
	if err := decode(r, &form); err != nil {
		writeError(w, err)
		return
	}
	eta, err := s.board.ETA.WhatIf(r.Context(), s.board.Token(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, etaPredictResponse{EtaHours: eta})
}

func (s *Server) handleETAByID(w http.ResponseWriter, r *http.Request) {
	res, err := s.board.ETA.ByID(r.Context(), s.board.Token(), chi.URLParam(r, "shipmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCarrierOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.board.Carrier.Options(r.Context(), s.board.Token())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleCarrierRecommend(w http.ResponseWriter, r *http.Request) {
	form := predict.DefaultCarrierForm()
	if err := decode(r, &form); err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.board.Carrier.Recommend(r.Context(), s.board.Token(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
