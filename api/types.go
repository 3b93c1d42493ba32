package api

// Role is a user's platform role.
type Role string

const (
	RoleVisitor Role = "visitor"
	RoleAuthor  Role = "author"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleVisitor, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// User is the identity object returned by the auth and users endpoints.
type User struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Role      Role    `json:"role"`
	CreatedAt Time    `json:"created_at"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Avatar != nil {
		v := *u.Avatar
		out.Avatar = &v
	}
	if u.Bio != nil {
		v := *u.Bio
		out.Bio = &v
	}
	return &out
}

// Tokens is the credential pair issued on login, registration and refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthResult is the data payload of login and registration.
type AuthResult struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateProfileInput is the body of PUT /api/users/me. Nil fields are left
// unchanged by the server.
type UpdateProfileInput struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,url"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// ChangePasswordInput is the body of PUT /api/users/me/password.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,nefield=OldPassword"`
}

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

// AuthorInfo is the author summary embedded in posts.
type AuthorInfo struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar,omitempty"`
}

// CategoryInfo is the category summary embedded in posts.
type CategoryInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TagInfo is the tag summary embedded in posts.
type TagInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostListItem is a post as it appears in list and search results.
type PostListItem struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Summary     *string       `json:"summary,omitempty"`
	CoverImage  *string       `json:"cover_image,omitempty"`
	Author      AuthorInfo    `json:"author"`
	Category    *CategoryInfo `json:"category,omitempty"`
	Tags        []TagInfo     `json:"tags"`
	Status      PostStatus    `json:"status"`
	ViewCount   int           `json:"view_count"`
	PublishedAt *Time         `json:"published_at,omitempty"`
	CreatedAt   Time          `json:"created_at"`
	UpdatedAt   Time          `json:"updated_at"`
}

// Post is a full post including its markdown content.
type Post struct {
	PostListItem
	Content string `json:"content"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Page is a paginated listing.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Category is a post category.
type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	PostCount   int     `json:"post_count"`
	CreatedAt   Time    `json:"created_at"`
	UpdatedAt   Time    `json:"updated_at"`
}

// Tag is a post tag.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	CreatedAt Time   `json:"created_at"`
}

// SearchSuggestion is one entry of the search-as-you-type endpoint.
type SearchSuggestion struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// ListPostsParams filters GET /api/posts. Zero values are omitted.
type ListPostsParams struct {
	Page     int        `validate:"gte=0"`
	PageSize int        `validate:"gte=0,lte=100"`
	Category string     `validate:"omitempty"`
	Tag      string     `validate:"omitempty"`
	Author   string     `validate:"omitempty"`
	Status   PostStatus `validate:"omitempty,oneof=draft published"`
}

// SearchParams is the query of GET /api/posts/search.
type SearchParams struct {
	Query    string `validate:"required"`
	Page     int    `validate:"gte=0"`
	PageSize int    `validate:"gte=0,lte=100"`
}

// CreatePostInput is the body of POST /api/posts.
type CreatePostInput struct {
	Title      string     `json:"title" validate:"required,max=200"`
	Content    string     `json:"content" validate:"required"`
	Summary    *string    `json:"summary,omitempty" validate:"omitempty,max=500"`
	CoverImage *string    `json:"cover_image,omitempty" validate:"omitempty,url"`
	CategoryID *string    `json:"category_id,omitempty"`
	TagIDs     []string   `json:"tag_ids,omitempty"`
	Status     PostStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

// UpdatePostInput is the body of PUT /api/posts/{slug}. Nil fields are left
// unchanged.
type UpdatePostInput struct {
	Title      *string     `json:"title,omitempty" validate:"omitempty,max=200"`
	Content    *string     `json:"content,omitempty"`
	Summary    *string     `json:"summary,omitempty" validate:"omitempty,max=500"`
	CoverImage *string     `json:"cover_image,omitempty" validate:"omitempty,url"`
	CategoryID *string     `json:"category_id,omitempty"`
	TagIDs     []string    `json:"tag_ids,omitempty"`
	Status     *PostStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

// CategoryInput is the body of POST /api/categories.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// CategoryUpdateInput is the body of PUT /api/categories/{slug}.
type CategoryUpdateInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// TagInput is the body of POST /api/tags.
type TagInput struct {
	Name string `json:"name" validate:"required,max=50"`
}
