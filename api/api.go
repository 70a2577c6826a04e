// Package api serves a read-only JSON view of guild leaderboards and challenges.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/talait/talaitbot/database"
	"github.com/talait/talaitbot/models"
)

const leaderboardSize = 10

// Store is the subset of the database the API reads.
type Store interface {
	GetLeaderboard(guildID string) ([]*models.Member, error)
	GetHallOfFame(guildID string) ([]*database.HallOfFameMonth, error)
	GetActiveChallenge(guildID string) (*models.Challenge, error)
	CountSubmissions(challengeID uint) (int, error)
}

type Server struct {
	store Store
	log   *logrus.Logger
	now   func() time.Time
}

func NewServer(store Store, log *logrus.Logger) *Server {
	return &Server{store: store, log: log, now: time.Now}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/guilds/{guildID}", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/halloffame", s.handleHallOfFame)
		r.Get("/challenge", s.handleChallenge)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	XP       int    `json:"xp"`
	TotalXP  int    `json:"total_xp"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.GetLeaderboard(chi.URLParam(r, "guildID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entries := make([]LeaderboardEntry, 0, leaderboardSize)
	for i, m := range members {
		if i == leaderboardSize {
			break
		}
		entries = append(entries, LeaderboardEntry{
			Rank:     i + 1,
			UserID:   m.UserID,
			Username: m.Username,
			XP:       m.XP,
			TotalXP:  m.TotalXP,
		})
	}
	writeJSON(w, entries)
}

type HallOfFameMonth struct {
	Month   string             `json:"month"`
	Entries []LeaderboardEntry `json:"entries"`
}

func (s *Server) handleHallOfFame(w http.ResponseWriter, r *http.Request) {
	months, err := s.store.GetHallOfFame(chi.URLParam(r, "guildID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]HallOfFameMonth, 0, len(months))
	for _, month := range months {
		m := HallOfFameMonth{Month: month.Month}
		for _, e := range month.Entries {
			m.Entries = append(m.Entries, LeaderboardEntry{
				Rank:     e.Rank,
				UserID:   e.UserID,
				Username: e.Username,
				XP:       e.XP,
				TotalXP:  e.TotalXP,
			})
		}
		out = append(out, m)
	}
	writeJSON(w, out)
}

type Challenge struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Difficulty       string    `json:"difficulty"`
	Language         string    `json:"language"`
	Week             int       `json:"week"`
	PostedAt         time.Time `json:"posted_at"`
	EndsAt           time.Time `json:"ends_at,omitempty"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Submissions      int       `json:"submissions"`
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetActiveChallenge(chi.URLParam(r, "guildID"))
	if errors.Is(err, database.ErrNoActiveChallenge) {
		http.Error(w, "no active challenge", http.StatusNotFound)
		return
	} else if err != nil {
		s.fail(w, r, err)
		return
	}
	count, err := s.store.CountSubmissions(c.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, Challenge{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		Difficulty:       c.Difficulty,
		Language:         c.Language,
		Week:             c.Week,
		PostedAt:         c.PostedAt,
		EndsAt:           c.EndsAt,
		RemainingSeconds: int64(c.Remaining(s.now()).Seconds()),
		Submissions:      count,
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithFields(logrus.Fields{
		"path":       r.URL.Path,
		"request_id": middleware.GetReqID(r.Context()),
	}).Errorln("API request failed:", err)
	http.Error(w, "db error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
