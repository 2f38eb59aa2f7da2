package api

import (
	"net/http"
	"sort"
	"strings"
)

// PayloadKind describes what an operation does with its payload argument.
type PayloadKind int

const (
	// PayloadNone ignores any payload.
	PayloadNone PayloadKind = iota
	// PayloadOptional sends the payload when one is given.
	PayloadOptional
	// PayloadRequired fails with MissingParameterError when no payload is given.
	PayloadRequired
	// PayloadBulk requires a sequence and sends it as {"rows": [...]}.
	PayloadBulk
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadOptional:
		return "optional"
	case PayloadRequired:
		return "required"
	case PayloadBulk:
		return "bulk"
	default:
		return "none"
	}
}

// Operation is one catalog entry: a named resource method expressed as data.
type Operation struct {
	Name   string
	Method string
	// Path is relative to the selected root. {param} placeholders are
	// replaced verbatim with the positional argument of the same name.
	Path string
	// Params are the required positional arguments, in call order.
	Params []string
	// BodyParams are positional arguments that are also written into the
	// request body under their own name.
	BodyParams []string
	Payload    PayloadKind
	// PayloadName names the payload in MissingParameterError. Defaults to "data".
	PayloadName string
	Root        Root
}

// Usage renders the operation as "name <p1> <p2> [data]".
func (op Operation) Usage() string {
	var b strings.Builder
	b.WriteString(op.Name)
	for _, p := range op.Params {
		b.WriteString(" <" + p + ">")
	}
	switch op.Payload {
	case PayloadOptional:
		b.WriteString(" [" + op.payloadName() + "]")
	case PayloadRequired, PayloadBulk:
		b.WriteString(" <" + op.payloadName() + ">")
	}
	return b.String()
}

func (op Operation) payloadName() string {
	if op.PayloadName == "" {
		return "data"
	}
	return op.PayloadName
}

const bulkRowsKey = "rows"

var catalog = []Operation{
	// Items
	{Name: "createItem", Method: http.MethodPost, Path: "tables/{table}/rows", Params: []string{"table"}, Payload: PayloadOptional},
	{Name: "getItems", Method: http.MethodGet, Path: "tables/{table}/rows", Params: []string{"table"}, Payload: PayloadOptional},
	{Name: "getItem", Method: http.MethodGet, Path: "tables/{table}/rows/{id}", Params: []string{"table", "id"}, Payload: PayloadOptional},
	{Name: "updateItem", Method: http.MethodPut, Path: "tables/{table}/rows/{id}", Params: []string{"table", "id"}, Payload: PayloadRequired},
	{Name: "deleteItem", Method: http.MethodDelete, Path: "tables/{table}/rows/{id}", Params: []string{"table", "id"}},
	{Name: "createBulk", Method: http.MethodPost, Path: "tables/{table}/rows/bulk", Params: []string{"table"}, Payload: PayloadBulk},
	{Name: "updateBulk", Method: http.MethodPut, Path: "tables/{table}/rows/bulk", Params: []string{"table"}, Payload: PayloadBulk},
	{Name: "deleteBulk", Method: http.MethodDelete, Path: "tables/{table}/rows/bulk", Params: []string{"table"}, Payload: PayloadBulk},

	// Files
	{Name: "createFile", Method: http.MethodPost, Path: "files", Payload: PayloadOptional},
	{Name: "getFiles", Method: http.MethodGet, Path: "files", Payload: PayloadOptional},
	{Name: "getFile", Method: http.MethodGet, Path: "files/{id}", Params: []string{"id"}},
	{Name: "updateFile", Method: http.MethodPut, Path: "files/{id}", Params: []string{"id"}, Payload: PayloadRequired},
	{Name: "deleteFile", Method: http.MethodDelete, Path: "files/{id}", Params: []string{"id"}},

	// Tables
	{Name: "createTable", Method: http.MethodPost, Path: "tables", Params: []string{"name"}, BodyParams: []string{"name"}},
	{Name: "getTables", Method: http.MethodGet, Path: "tables", Payload: PayloadOptional},
	{Name: "getTable", Method: http.MethodGet, Path: "tables/{table}", Params: []string{"table"}, Payload: PayloadOptional},

	// Columns
	{Name: "createColumn", Method: http.MethodPost, Path: "tables/{table}/columns", Params: []string{"table"}, Payload: PayloadOptional},
	{Name: "getColumns", Method: http.MethodGet, Path: "tables/{table}/columns", Params: []string{"table"}, Payload: PayloadOptional},
	{Name: "getColumn", Method: http.MethodGet, Path: "tables/{table}/columns/{column}", Params: []string{"table", "column"}},
	{Name: "updateColumn", Method: http.MethodPut, Path: "tables/{table}/columns/{column}", Params: []string{"table", "column"}, Payload: PayloadOptional},
	{Name: "deleteColumn", Method: http.MethodDelete, Path: "tables/{table}/columns/{column}", Params: []string{"table", "column"}},

	// Groups
	{Name: "createGroup", Method: http.MethodPost, Path: "groups", Params: []string{"name"}, BodyParams: []string{"name"}},
	{Name: "getGroups", Method: http.MethodGet, Path: "groups"},
	{Name: "getGroup", Method: http.MethodGet, Path: "groups/{id}", Params: []string{"id"}},

	// Privileges
	{Name: "createPrivileges", Method: http.MethodPost, Path: "privileges/{id}", Params: []string{"id"}, Payload: PayloadOptional},
	{Name: "getPrivileges", Method: http.MethodGet, Path: "privileges/{id}", Params: []string{"id"}},
	{Name: "getTablePrivileges", Method: http.MethodGet, Path: "privileges/{id}/{table}", Params: []string{"id", "table"}},
	// TODO: confirm with the API owners whether updatePrivileges should be a PUT with a payload.
	{Name: "updatePrivileges", Method: http.MethodGet, Path: "privileges/{id}/{table}", Params: []string{"id", "table"}},

	// Preferences
	{Name: "getPreferences", Method: http.MethodGet, Path: "tables/{table}/preferences", Params: []string{"table"}},
	{Name: "updatePreference", Method: http.MethodPut, Path: "tables/{table}/preferences", Params: []string{"table"}, Payload: PayloadOptional},

	// Messages
	{Name: "getMessages", Method: http.MethodGet, Path: "messages/rows", Payload: PayloadOptional},
	{Name: "getMessage", Method: http.MethodGet, Path: "messages/rows/{id}", Params: []string{"id"}},

	// Activity
	{Name: "getActivity", Method: http.MethodGet, Path: "activity", Payload: PayloadOptional},

	// Bookmarks
	{Name: "getBookmarks", Method: http.MethodGet, Path: "bookmarks"},
	{Name: "getUserBookmarks", Method: http.MethodGet, Path: "bookmarks/self"},
	{Name: "getBookmark", Method: http.MethodGet, Path: "bookmarks/{id}", Params: []string{"id"}},
	{Name: "createBookmark", Method: http.MethodPost, Path: "bookmarks", Payload: PayloadRequired},
	{Name: "deleteBookmark", Method: http.MethodDelete, Path: "bookmarks/{id}", Params: []string{"id"}},

	// Settings
	{Name: "getSettings", Method: http.MethodGet, Path: "settings"},
	{Name: "getSettingsByCollection", Method: http.MethodGet, Path: "settings/{name}", Params: []string{"name"}},
	{Name: "updateSettings", Method: http.MethodPut, Path: "settings/{name}", Params: []string{"name"}, Payload: PayloadOptional},

	// Users
	{Name: "getUsers", Method: http.MethodGet, Path: "users", Payload: PayloadOptional},
	{Name: "getUser", Method: http.MethodGet, Path: "users/{id}", Params: []string{"id"}},
	{Name: "getMe", Method: http.MethodGet, Path: "users/me"},
	{Name: "createUser", Method: http.MethodPost, Path: "users", Payload: PayloadRequired, PayloadName: "user"},
	{Name: "updateUser", Method: http.MethodPut, Path: "users/{id}", Params: []string{"id"}, Payload: PayloadRequired},
	{Name: "updateMe", Method: http.MethodPut, Path: "users/me", Payload: PayloadRequired},
	// The server applies no strength or length check to the new password.
	{Name: "updatePassword", Method: http.MethodPut, Path: "users/me", Params: []string{"password"}, BodyParams: []string{"password"}},

	// Passthrough to arbitrary endpoints under the API root
	{Name: "getApi", Method: http.MethodGet, Path: "{api_endpoint}", Params: []string{"api_endpoint"}, Payload: PayloadOptional, Root: RootAPI},
	{Name: "postApi", Method: http.MethodPost, Path: "{api_endpoint}", Params: []string{"api_endpoint"}, Payload: PayloadRequired, Root: RootAPI},
	{Name: "putApi", Method: http.MethodPut, Path: "{api_endpoint}", Params: []string{"api_endpoint"}, Payload: PayloadRequired, Root: RootAPI},
	{Name: "deleteApi", Method: http.MethodDelete, Path: "{api_endpoint}", Params: []string{"api_endpoint"}, Payload: PayloadRequired, Root: RootAPI},

	// Utilities
	{Name: "getHash", Method: http.MethodPost, Path: "hash", Params: []string{"string"}, BodyParams: []string{"string"}, Payload: PayloadOptional},
	{Name: "getRandom", Method: http.MethodPost, Path: "random", Payload: PayloadOptional},
}

var catalogIndex = func() map[string]Operation {
	idx := make(map[string]Operation, len(catalog))
	for _, op := range catalog {
		idx[op.Name] = op
	}
	return idx
}()

// Lookup returns the catalog entry with the given name.
func Lookup(name string) (Operation, bool) {
	op, ok := catalogIndex[name]
	return op, ok
}

// Operations returns every catalog entry sorted by name.
func Operations() []Operation {
	ops := make([]Operation, len(catalog))
	copy(ops, catalog)
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// OperationNames returns the sorted operation names.
func OperationNames() []string {
	ops := Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}
	return names
}
