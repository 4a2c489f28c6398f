package handler

const (
	// APIPath is the prefix of every JSON route.
	APIPath = "/api"

	// ACLPath is the prefix of the ACL administration routes.
	ACLPath = APIPath + "/acl"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// ErrNilDepsFatalLogMsg is used if app or a dependency is nil.
	ErrNilDepsFatalLogMsg = "app or handler dependencies are nil"
)
