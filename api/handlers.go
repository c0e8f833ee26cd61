package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lexamplify/draftstudio/auth"
	"github.com/lexamplify/draftstudio/convert"
	"github.com/lexamplify/draftstudio/docparse"
	"github.com/lexamplify/draftstudio/flow"
	"github.com/lexamplify/draftstudio/schema"
	"github.com/lexamplify/draftstudio/shield"
	"github.com/lexamplify/draftstudio/store"
	"github.com/lexamplify/draftstudio/transform"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.store.UserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(s.secret, &auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, s.expiry)
	if err != nil {
		s.logger.Error("generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.expiry / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

// handleConvert accepts a binary document upload and returns its
// structured document tree.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.readUpload(w, r, "document")
	if !ok {
		return
	}

	markup, err := convert.Convert(data)
	if err != nil {
		shield.GetLogger(r.Context()).Warn("conversion failed", "error", err)
		var convErr *convert.ConversionError
		details := "the document could not be converted"
		if errors.As(err, &convErr) {
			details = convErr.Error()
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "conversion failed",
			Details: details,
		})
		return
	}

	doc, err := transform.Transform(markup, nil)
	if err != nil {
		shield.GetLogger(r.Context()).Error("transform failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "conversion failed",
			Details: "the converted markup could not be structured",
		})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleParse accepts a document upload in any supported format and
// returns its text content and metadata.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	data, header, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	file := docparse.File{
		Name: header.Filename,
		Type: header.Header.Get("Content-Type"),
		Data: data,
	}
	parsed, err := s.parser.Parse(r.Context(), file)
	if err != nil {
		shield.GetLogger(r.Context()).Warn("parse failed", "file", header.Filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:    "parse failed",
			Details:  err.Error(),
			FileName: header.Filename,
		})
		return
	}

	fileType, _ := s.parser.Detect(file)
	writeJSON(w, http.StatusOK, map[string]any{
		"content":  parsed.Content,
		"metadata": parsed.Metadata,
		"fileName": header.Filename,
		"fileSize": len(data),
		"fileType": fileType,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var in flow.ChatInput
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := s.flows.Chat(r.Context(), in)
	if err != nil {
		s.writeFlowError(w, r, err, "chat failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var in flow.ExtractInput
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := s.flows.Extract(r.Context(), in)
	if err != nil {
		s.writeFlowError(w, r, err, "extraction failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var in flow.AnalyzeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := s.flows.Analyze(r.Context(), in)
	if err != nil {
		s.writeFlowError(w, r, err, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var in flow.SuggestInput
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := s.flows.Suggest(r.Context(), in)
	if err != nil {
		s.writeFlowError(w, r, err, "suggestion failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	var in flow.TitleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := s.flows.Title(r.Context(), in)
	if err != nil {
		s.writeFlowError(w, r, err, "title generation failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCapabilities reports what the pipeline accepts: the parseable
// file formats and the node and mark vocabulary of converted documents.
func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	nodes := schema.NodeTypes()
	slices.Sort(nodes)
	marks := schema.MarkTypes()
	slices.Sort(marks)
	writeJSON(w, http.StatusOK, map[string]any{
		"formats": s.parser.SupportedFormats(),
		"nodes":   nodes,
		"marks":   marks,
	})
}

func (s *Server) handleSearchTemplates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	templates, err := s.store.SearchTemplates(r.Context(), query, 20)
	if err != nil {
		s.logger.Error("search templates", "error", err)
		writeError(w, http.StatusInternalServerError, "template search failed")
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.store.GetTemplate(r.Context(), chi.URLParam(r, "templateID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	if err != nil {
		s.logger.Error("get template", "error", err)
		writeError(w, http.StatusInternalServerError, "template lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	docs, err := s.store.ListDocuments(r.Context(), claims.UserID, 0)
	if err != nil {
		s.logger.Error("list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "listing documents failed")
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string          `json:"title"`
		Content json.RawMessage `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	claims := auth.GetClaims(r.Context())
	doc, err := s.store.CreateDocument(r.Context(), claims.UserID, req.Title, req.Content)
	if err != nil {
		s.logger.Error("create document", "error", err)
		writeError(w, http.StatusInternalServerError, "creating document failed")
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// ownedDocument loads a document and checks it belongs to the caller.
// Foreign documents read as 404 so ids are not probeable.
func (s *Server) ownedDocument(w http.ResponseWriter, r *http.Request) (*store.Document, bool) {
	doc, err := s.store.GetDocument(r.Context(), chi.URLParam(r, "documentID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("get document", "error", err)
		writeError(w, http.StatusInternalServerError, "document lookup failed")
		return nil, false
	}
	if doc.Owner != auth.GetClaims(r.Context()).UserID {
		writeError(w, http.StatusNotFound, "document not found")
		return nil, false
	}
	return doc, true
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}
	var req struct {
		Title   string          `json:"title"`
		Content json.RawMessage `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.store.UpdateDocument(r.Context(), doc.ID, req.Title, req.Content); err != nil {
		s.logger.Error("update document", "error", err)
		writeError(w, http.StatusInternalServerError, "updating document failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteDocument(r.Context(), doc.ID); err != nil {
		s.logger.Error("delete document", "error", err)
		writeError(w, http.StatusInternalServerError, "deleting document failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// readUpload pulls one multipart file out of the request, answering
// 400 when the field is absent or unreadable.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, *multipart.FileHeader, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file could not be read")
		return nil, nil, false
	}
	return data, header, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeFlowError maps a flow failure to its HTTP shape: validation
// errors are the caller's fault, anything else is internal.
func (s *Server) writeFlowError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var verr *flow.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error()})
		return
	}
	shield.GetLogger(r.Context()).Error(message, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error:   message,
		Details: err.Error(),
	})
}
