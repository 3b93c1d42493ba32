package apitest

import (
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrEthical07/goBlog/api"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.echoRequestID)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			s.handle(r, http.MethodPost, "/login", RouteLogin, s.login)
			s.handle(r, http.MethodPost, "/register", RouteRegister, s.register)
			s.handle(r, http.MethodPost, "/refresh", RouteRefresh, s.refreshTokens)
		})
		r.Route("/users", func(r chi.Router) {
			s.handle(r, http.MethodGet, "/me", RouteMe, s.authed(s.me))
			s.handle(r, http.MethodPut, "/me", RouteUpdateMe, s.authed(s.updateMe))
			s.handle(r, http.MethodPut, "/me/password", RouteChangePassword, s.authed(s.changePassword))
			s.handle(r, http.MethodGet, "/{id}", RouteGetUser, s.getUser)
		})
		r.Route("/posts", func(r chi.Router) {
			s.handle(r, http.MethodGet, "/", RouteListPosts, s.listPosts)
			s.handle(r, http.MethodGet, "/search", RouteSearch, s.search)
			s.handle(r, http.MethodGet, "/search/suggest", RouteSuggest, s.suggest)
			s.handle(r, http.MethodGet, "/{slug}", RouteGetPost, s.getPost)
			s.handle(r, http.MethodPost, "/", RouteCreatePost, s.authed(s.requireRole(s.createPost, api.RoleAuthor, api.RoleAdmin)))
			s.handle(r, http.MethodPut, "/{slug}", RouteUpdatePost, s.authed(s.requireRole(s.updatePost, api.RoleAuthor, api.RoleAdmin)))
			s.handle(r, http.MethodDelete, "/{slug}", RouteDeletePost, s.authed(s.requireRole(s.deletePost, api.RoleAuthor, api.RoleAdmin)))
		})
		r.Route("/categories", func(r chi.Router) {
			s.handle(r, http.MethodGet, "/", RouteListCategories, s.listCategories)
			s.handle(r, http.MethodPost, "/", RouteCreateCategory, s.authed(s.requireRole(s.createCategory, api.RoleAdmin)))
			s.handle(r, http.MethodPut, "/{slug}", RouteUpdateCategory, s.authed(s.requireRole(s.updateCategory, api.RoleAdmin)))
			s.handle(r, http.MethodDelete, "/{slug}", RouteDeleteCategory, s.authed(s.requireRole(s.deleteCategory, api.RoleAdmin)))
		})
		r.Route("/tags", func(r chi.Router) {
			s.handle(r, http.MethodGet, "/", RouteListTags, s.listTags)
			s.handle(r, http.MethodPost, "/", RouteCreateTag, s.authed(s.requireRole(s.createTag, api.RoleAuthor, api.RoleAdmin)))
			s.handle(r, http.MethodDelete, "/{slug}", RouteDeleteTag, s.authed(s.requireRole(s.deleteTag, api.RoleAdmin)))
		})
	})
	return r
}

type userHandler func(w http.ResponseWriter, r *http.Request, u *userRecord)

func (s *Server) handle(r chi.Router, method, pattern, route string, h http.HandlerFunc) {
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.counter(route).Add(1)

		if s.latency > 0 {
			select {
			case <-time.After(s.latency):
			case <-req.Context().Done():
				return
			}
		}

		if status, ok := s.popFailure(route); ok {
			writeDetail(w, status, http.StatusText(status))
			return
		}
		h(w, req)
	}))
}

func (s *Server) counter(route string) *atomic.Int64 {
	s.callsMu.Lock()
	defer s.callsMu.Unlock()
	c, ok := s.calls[route]
	if !ok {
		c = &atomic.Int64{}
		s.calls[route] = c
	}
	return c
}

func (s *Server) popFailure(route string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.failures[route]
	if len(queue) == 0 {
		return 0, false
	}
	s.failures[route] = queue[1:]
	return queue[0], true
}

func (s *Server) echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			w.Header().Set("X-Request-ID", id)
		}
		next.ServeHTTP(w, r)
	})
}

// authed mirrors the real service: a missing bearer header is 403, an unknown
// or revoked token is 401.
func (s *Server) authed(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusForbidden, "Not authenticated")
			return
		}

		s.mu.Lock()
		userID, known := s.access[token]
		rec := s.users[userID]
		s.mu.Unlock()

		if !known {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if rec == nil || !rec.active {
			writeDetail(w, http.StatusUnauthorized, "User not found or inactive")
			return
		}
		h(w, r, rec)
	}
}

func (s *Server) requireRole(h userHandler, roles ...api.Role) userHandler {
	return func(w http.ResponseWriter, r *http.Request, u *userRecord) {
		if !slices.Contains(roles, u.user.Role) {
			writeDetail(w, http.StatusForbidden, "Permission denied")
			return
		}
		h(w, r, u)
	}
}

func (s *Server) waitMeGate(r *http.Request) {
	s.mu.Lock()
	gate := s.meGate
	s.mu.Unlock()
	if gate == nil {
		return
	}
	select {
	case <-gate:
	case <-r.Context().Done():
	}
}

/* ==== AUTH ==== */

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in api.LoginInput
	if !decodeBody(r, &in) {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	var found *userRecord
	for _, rec := range s.users {
		if rec.user.Email == in.Email {
			found = rec
			break
		}
	}
	if found == nil || found.password != in.Password {
		s.mu.Unlock()
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !found.active {
		s.mu.Unlock()
		writeDetail(w, http.StatusForbidden, "Account is disabled")
		return
	}
	tokens := s.issueLocked(found.user.ID)
	user := found.user
	s.mu.Unlock()

	writeOK(w, api.AuthResult{User: user, Tokens: tokens})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in api.RegisterInput
	if !decodeBody(r, &in) {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	for _, rec := range s.users {
		if rec.user.Email == in.Email || rec.user.Username == in.Username {
			s.mu.Unlock()
			writeDetail(w, http.StatusBadRequest, "Email or username already registered")
			return
		}
	}
	user := s.createUserLocked(in.Username, in.Email, in.Password, api.RoleVisitor)
	tokens := s.issueLocked(user.ID)
	s.mu.Unlock()

	writeOK(w, api.AuthResult{User: user, Tokens: tokens})
}

func (s *Server) refreshTokens(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(r, &in) || in.RefreshToken == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "refresh_token required")
		return
	}

	s.mu.Lock()
	userID, ok := s.refresh[in.RefreshToken]
	rec := s.users[userID]
	if !ok || rec == nil || !rec.active {
		s.mu.Unlock()
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	delete(s.refresh, in.RefreshToken)
	tokens := s.issueLocked(userID)
	s.mu.Unlock()

	writeOK(w, tokens)
}

/* ==== USERS ==== */

func (s *Server) me(w http.ResponseWriter, r *http.Request, u *userRecord) {
	s.waitMeGate(r)
	if r.Context().Err() != nil {
		return
	}
	s.mu.Lock()
	user := u.user
	s.mu.Unlock()
	writeOK(w, user)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request, u *userRecord) {
	var in api.UpdateProfileInput
	if !decodeBody(r, &in) {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Username != nil {
		for id, rec := range s.users {
			if id != u.user.ID && rec.user.Username == *in.Username {
				writeDetail(w, http.StatusBadRequest, "Username already taken")
				return
			}
		}
		u.user.Username = *in.Username
	}
	if in.Avatar != nil {
		u.user.Avatar = in.Avatar
	}
	if in.Bio != nil {
		u.user.Bio = in.Bio
	}
	writeOK(w, u.user)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request, u *userRecord) {
	var in api.ChangePasswordInput
	if !decodeBody(r, &in) {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.password != in.OldPassword {
		writeDetail(w, http.StatusBadRequest, "Old password is incorrect")
		return
	}
	u.password = in.NewPassword
	writeMessage(w, "Password changed successfully")
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rec, ok := s.users[chi.URLParam(r, "id")]
	var user api.User
	if ok {
		user = rec.user
	}
	s.mu.Unlock()

	if !ok || !rec.active {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeOK(w, user)
}

/* ==== POSTS ==== */

func (s *Server) createPostLocked(author *userRecord, in api.CreatePostInput) *postRecord {
	now := api.Time{Time: time.Now().UTC()}
	status := in.Status
	if status == "" {
		status = api.PostDraft
	}
	p := &postRecord{
		post: api.Post{
			PostListItem: api.PostListItem{
				ID:         newID(),
				Title:      in.Title,
				Slug:       s.uniquePostSlugLocked(slugify(in.Title)),
				Summary:    in.Summary,
				CoverImage: in.CoverImage,
				Status:     status,
				Tags:       []api.TagInfo{},
				CreatedAt:  now,
				UpdatedAt:  now,
			},
			Content: in.Content,
		},
		tagIDs: in.TagIDs,
	}
	if author != nil {
		p.post.Author = api.AuthorInfo{ID: author.user.ID, Username: author.user.Username, Avatar: author.user.Avatar}
	}
	if in.CategoryID != nil {
		p.categoryID = *in.CategoryID
	}
	if status == api.PostPublished {
		p.post.PublishedAt = &now
	}
	s.resolveRefsLocked(p)
	s.posts = append(s.posts, p)
	return p
}

func (s *Server) uniquePostSlugLocked(base string) string {
	if base == "" {
		base = "post"
	}
	slug := base
	for i := 2; s.findPostLocked(slug) != nil; i++ {
		slug = base + "-" + strconv.Itoa(i)
	}
	return slug
}

func (s *Server) resolveRefsLocked(p *postRecord) {
	p.post.Category = nil
	for _, c := range s.categories {
		if c.ID == p.categoryID {
			p.post.Category = &api.CategoryInfo{ID: c.ID, Name: c.Name, Slug: c.Slug}
		}
	}
	p.post.Tags = []api.TagInfo{}
	for _, id := range p.tagIDs {
		for _, t := range s.tags {
			if t.ID == id {
				p.post.Tags = append(p.post.Tags, api.TagInfo{ID: t.ID, Name: t.Name, Slug: t.Slug})
			}
		}
	}
}

func (s *Server) findPostLocked(slug string) *postRecord {
	for _, p := range s.posts {
		if p.post.Slug == slug && !p.deleted {
			return p
		}
	}
	return nil
}

func pagination(r *http.Request) (page, size int, ok bool) {
	page, size = 1, 10
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		page = n
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return 0, 0, false
		}
		size = n
	}
	return page, size, true
}

func paginate(items []api.PostListItem, page, size int) api.Page[api.PostListItem] {
	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(size)))
	}
	out := make([]api.PostListItem, end-start)
	copy(out, items[start:end])
	return api.Page[api.PostListItem]{
		Items:      out,
		Pagination: api.Pagination{Page: page, PageSize: size, Total: total, TotalPages: totalPages},
	}
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	page, size, ok := pagination(r)
	if !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid pagination")
		return
	}
	q := r.URL.Query()
	status := api.PostStatus(q.Get("status"))
	if status == "" {
		status = api.PostPublished
	}

	s.mu.Lock()
	var items []api.PostListItem
	for i := len(s.posts) - 1; i >= 0; i-- {
		p := s.posts[i]
		if p.deleted || p.post.Status != status {
			continue
		}
		if c := q.Get("category"); c != "" && (p.post.Category == nil || p.post.Category.Slug != c) {
			continue
		}
		if t := q.Get("tag"); t != "" && !slices.ContainsFunc(p.post.Tags, func(ti api.TagInfo) bool { return ti.Slug == t }) {
			continue
		}
		if a := q.Get("author"); a != "" && p.post.Author.ID != a {
			continue
		}
		items = append(items, p.post.PostListItem)
	}
	s.mu.Unlock()

	writeOK(w, paginate(items, page, size))
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p := s.findPostLocked(chi.URLParam(r, "slug"))
	var post api.Post
	if p != nil {
		p.post.ViewCount++
		post = p.post
	}
	s.mu.Unlock()

	if p == nil {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	writeOK(w, post)
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request, u *userRecord) {
	var in api.CreatePostInput
	if !decodeBody(r, &in) || in.Title == "" || in.Content == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title and content required")
		return
	}
	s.mu.Lock()
	post := s.createPostLocked(u, in).post
	s.mu.Unlock()
	writeOK(w, post)
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request, u *userRecord) {
	var in api.UpdatePostInput
	if !decodeBody(r, &in) {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPostLocked(chi.URLParam(r, "slug"))
	if p == nil {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	if p.post.Author.ID != u.user.ID && u.user.Role != api.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "Not the author")
		return
	}
	if in.Title != nil {
		p.post.Title = *in.Title
	}
	if in.Content != nil {
		p.post.Content = *in.Content
	}
	if in.Summary != nil {
		p.post.Summary = in.Summary
	}
	if in.CoverImage != nil {
		p.post.CoverImage = in.CoverImage
	}
	if in.CategoryID != nil {
		p.categoryID = *in.CategoryID
	}
	if in.TagIDs != nil {
		p.tagIDs = in.TagIDs
	}
	if in.Status != nil {
		if *in.Status == api.PostPublished && p.post.PublishedAt == nil {
			now := api.Time{Time: time.Now().UTC()}
			p.post.PublishedAt = &now
		}
		p.post.Status = *in.Status
	}
	p.post.UpdatedAt = api.Time{Time: time.Now().UTC()}
	s.resolveRefsLocked(p)
	writeOK(w, p.post)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request, u *userRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPostLocked(chi.URLParam(r, "slug"))
	if p == nil {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	if p.post.Author.ID != u.user.ID && u.user.Role != api.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "Not the author")
		return
	}
	p.deleted = true
	writeMessage(w, "Post deleted successfully")
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	page, size, ok := pagination(r)
	if q == "" || !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "q required")
		return
	}

	s.mu.Lock()
	var items []api.PostListItem
	for _, p := range s.posts {
		if p.deleted || p.post.Status != api.PostPublished {
			continue
		}
		if strings.Contains(strings.ToLower(p.post.Title), q) || strings.Contains(strings.ToLower(p.post.Content), q) {
			items = append(items, p.post.PostListItem)
		}
	}
	s.mu.Unlock()

	writeOK(w, paginate(items, page, size))
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if q == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "q required")
		return
	}

	s.mu.Lock()
	out := []api.SearchSuggestion{}
	for _, p := range s.posts {
		if len(out) == 5 {
			break
		}
		if !p.deleted && p.post.Status == api.PostPublished && strings.Contains(strings.ToLower(p.post.Title), q) {
			out = append(out, api.SearchSuggestion{Title: p.post.Title, Slug: p.post.Slug})
		}
	}
	s.mu.Unlock()

	writeOK(w, out)
}

/* ==== CATEGORIES & TAGS ==== */

func (s *Server) createCategoryLocked(name string, desc *string) *api.Category {
	now := api.Time{Time: time.Now().UTC()}
	c := &api.Category{ID: newID(), Name: name, Slug: slugify(name), Description: desc, CreatedAt: now, UpdatedAt: now}
	s.categories = append(s.categories, c)
	return c
}

func (s *Server) createTagLocked(name string) *api.Tag {
	t := &api.Tag{ID: newID(), Name: name, Slug: slugify(name), CreatedAt: api.Time{Time: time.Now().UTC()}}
	s.tags = append(s.tags, t)
	return t
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]api.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cat := *c
		cat.PostCount = 0
		for _, p := range s.posts {
			if !p.deleted && p.categoryID == c.ID {
				cat.PostCount++
			}
		}
		out = append(out, cat)
	}
	s.mu.Unlock()
	writeOK(w, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request, _ *userRecord) {
	var in api.CategoryInput
	if !decodeBody(r, &in) || in.Name == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == in.Name {
			writeDetail(w, http.StatusBadRequest, "Category already exists")
			return
		}
	}
	writeOK(w, *s.createCategoryLocked(in.Name, in.Description))
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request, _ *userRecord) {
	var in api.CategoryUpdateInput
	if !decodeBody(r, &in) {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slug := chi.URLParam(r, "slug")
	for _, c := range s.categories {
		if c.Slug != slug {
			continue
		}
		if in.Name != nil {
			c.Name = *in.Name
			c.Slug = slugify(*in.Name)
		}
		if in.Description != nil {
			c.Description = in.Description
		}
		c.UpdatedAt = api.Time{Time: time.Now().UTC()}
		writeOK(w, *c)
		return
	}
	writeDetail(w, http.StatusNotFound, "Category not found")
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request, _ *userRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slug := chi.URLParam(r, "slug")
	for i, c := range s.categories {
		if c.Slug == slug {
			s.categories = slices.Delete(s.categories, i, i+1)
			writeMessage(w, "Category deleted successfully")
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Category not found")
}

func (s *Server) listTags(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]api.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, *t)
	}
	s.mu.Unlock()
	writeOK(w, out)
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request, _ *userRecord) {
	var in api.TagInput
	if !decodeBody(r, &in) || in.Name == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.Name == in.Name {
			writeDetail(w, http.StatusBadRequest, "Tag already exists")
			return
		}
	}
	writeOK(w, *s.createTagLocked(in.Name))
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request, _ *userRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slug := chi.URLParam(r, "slug")
	for i, t := range s.tags {
		if t.Slug == slug {
			s.tags = slices.Delete(s.tags, i, i+1)
			writeMessage(w, "Tag deleted successfully")
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Tag not found")
}
