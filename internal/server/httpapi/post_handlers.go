package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/miniblog/internal/server/models"
	"github.com/dmitrijs2005/miniblog/internal/server/services"
	"github.com/gorilla/mux"
)

type articleResponse struct {
	Success bool            `json:"success"`
	Data    *models.Article `json:"data"`
}

type articlesResponse struct {
	Success bool              `json:"success"`
	Data    []*models.Article `json:"data"`
	Message string            `json:"message,omitempty"`
}

type presignRequest struct {
	Kind        string `json:"kind"`
	ContentType string `json:"contentType"`
}

type presignResponse struct {
	Success bool `json:"success"`
	*services.Upload
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	list, err := s.articles.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articlesResponse{Success: true, Data: list})
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	a, err := s.articles.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articleResponse{Success: true, Data: a})
}

func (s *Server) myPosts(w http.ResponseWriter, r *http.Request) {
	list, err := s.articles.Mine(r.Context(), claimsFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articlesResponse{Success: true, Data: list})
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var in models.ArticlePatch
	if !decodeOrReject(w, r, &in) {
		return
	}

	a, err := s.articles.Create(r.Context(), claimsFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, articleResponse{Success: true, Data: a})
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var patch models.ArticlePatch
	if !decodeOrReject(w, r, &patch) {
		return
	}

	a, err := s.articles.Update(r.Context(), claimsFrom(r.Context()), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articleResponse{Success: true, Data: a})
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.articles.Delete(r.Context(), claimsFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Success: true, Message: "Post deleted"})
}

func (s *Server) presign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if !decodeOrReject(w, r, &req) {
		return
	}

	up, err := s.media.PresignUpload(r.Context(), claimsFrom(r.Context()), req.Kind, req.ContentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presignResponse{Success: true, Upload: up})
}

func (s *Server) seed(w http.ResponseWriter, r *http.Request) {
	list, err := s.articles.Seed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articlesResponse{
		Success: true,
		Data:    list,
		Message: fmt.Sprintf("Seeded %d posts.", len(list)),
	})
}
