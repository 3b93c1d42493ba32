package permission

// Capabilities of the blog platform, mirroring what the API enforces.
const (
	PostCreate     = "post.create"
	PostUpdateOwn  = "post.update_own"
	PostDeleteOwn  = "post.delete_own"
	PostUpdateAny  = "post.update_any"
	PostDeleteAny  = "post.delete_any"
	CategoryManage = "category.manage"
	TagCreate      = "tag.create"
	TagDelete      = "tag.delete"
	ProfileUpdate  = "profile.update"
	DraftsView     = "drafts.view"
)

// Role names as the API reports them.
const (
	RoleVisitor = "visitor"
	RoleAuthor  = "author"
	RoleAdmin   = "admin"
)

var allCapabilities = []string{
	PostCreate,
	PostUpdateOwn,
	PostDeleteOwn,
	PostUpdateAny,
	PostDeleteAny,
	CategoryManage,
	TagCreate,
	TagDelete,
	ProfileUpdate,
	DraftsView,
}

// Blog returns a frozen manager with the platform's roles: visitors may edit
// their profile, authors may also write and tag posts, admins hold the root
// bit.
func Blog() (*RoleManager, error) {
	reg := NewRegistry(true)
	for _, name := range allCapabilities {
		if _, err := reg.Register(name); err != nil {
			return nil, err
		}
	}
	reg.Freeze()

	rm := NewRoleManager(reg)
	roles := []struct {
		name string
		caps []string
		root bool
	}{
		{name: RoleVisitor, caps: []string{ProfileUpdate}},
		{name: RoleAuthor, caps: []string{ProfileUpdate, PostCreate, PostUpdateOwn, PostDeleteOwn, TagCreate, DraftsView}},
		{name: RoleAdmin, root: true},
	}
	for _, r := range roles {
		if err := rm.RegisterRole(r.name, r.caps, r.root); err != nil {
			return nil, err
		}
	}
	rm.Freeze()
	return rm, nil
}
