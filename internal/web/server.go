// Package web serves the game over HTTP: a websocket for live play plus a
// few JSON and file endpoints.
package web

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"dumplingtale/internal/achievement"
	"dumplingtale/internal/dialogue"
	"dumplingtale/internal/game"
	"dumplingtale/internal/story"
	"dumplingtale/internal/storymap"
)

type Server struct {
	Host      *Host
	AssetsDir string
	Logger    *log.Logger
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/achievements", s.handleAchievements)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/map.pdf", s.handleMap)
	mux.HandleFunc("GET /assets/{kind}/{key}", s.handleAsset)
	return mux
}

func (s *Server) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return s.Logger
}

func (s *Server) assetsDir() string {
	if s.AssetsDir == "" {
		return "assets"
	}
	return s.AssetsDir
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Printf("web: encode response: %v", err)
	}
}

type chapterInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type indexInfo struct {
	Title    string        `json:"title"`
	Chapters []chapterInfo `json:"chapters"`
	HasSave  bool          `json:"hasSave"`
	Mode     game.Mode     `json:"mode"`
}

// GET / describes the loaded story and whether Continue is available.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var info indexInfo
	s.Host.View(func(g *game.Game) {
		info.Title = g.Content.Title
		for _, ch := range g.Content.Chapters {
			info.Chapters = append(info.Chapters, chapterInfo{Name: ch.Name, Description: ch.Description})
		}
		info.HasSave = g.HasSave(r.Context())
		info.Mode = g.Mode()
	})
	s.writeJSON(w, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var st game.Status
	s.Host.View(func(g *game.Game) { st = g.Status() })
	s.writeJSON(w, st)
}

type achievementsResponse struct {
	Achievements []achievement.Achievement `json:"achievements"`
	Unlocked     int                       `json:"unlocked"`
	PerfectCount int                       `json:"perfectCount"`
}

func (s *Server) handleAchievements(w http.ResponseWriter, _ *http.Request) {
	var resp achievementsResponse
	s.Host.View(func(g *game.Game) {
		resp.Achievements = g.Achievements.All()
		resp.Unlocked = g.Achievements.UnlockedCount()
		resp.PerfectCount = g.Achievements.PerfectCount()
	})
	s.writeJSON(w, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	var entries []dialogue.Entry
	s.Host.View(func(g *game.Game) { entries = g.Dialogue.History().Entries() })
	if entries == nil {
		entries = []dialogue.Entry{}
	}
	s.writeJSON(w, entries)
}

// GET /api/map.pdf renders the route taken so far.
func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	var (
		content *story.Content
		hist    []dialogue.Entry
		current int
	)
	s.Host.View(func(g *game.Game) {
		content = g.Content
		hist = g.Dialogue.History().Entries()
		current = g.Dialogue.CurrentNodeID()
	})
	pdf, err := storymap.Generate(content, hist, current, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="dumpling-tale-map.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		s.logger().Printf("web: write map: %v", err)
	}
}
