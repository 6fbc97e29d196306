package cascade

import "errors"

var (
	// ErrInvalidArgument indicates a constructor or method argument with the
	// wrong shape: a nil scope mapping, an empty scope name, a duplicate scope,
	// a non-slice value assigned to a slice, or an unknown preferred scope.
	ErrInvalidArgument = errors.New("cascade: invalid argument")
	// ErrEmptyInput indicates a merged mapping was constructed without scopes.
	ErrEmptyInput = errors.New("cascade: at least one scope is required")
	// ErrKeyNotFound indicates the key is absent from every scope.
	ErrKeyNotFound = errors.New("cascade: key not found")
	// ErrIndexOutOfRange indicates an integer sequence index outside bounds.
	ErrIndexOutOfRange = errors.New("cascade: index out of range")
	// ErrInvalidKeyType indicates a key of an unsupported type, such as an
	// empty key where a non-empty string is required.
	ErrInvalidKeyType = errors.New("cascade: invalid key type")
	// ErrReservedKeySuffix indicates a caller-supplied key already carries the
	// override marker, which only the implementation may append.
	ErrReservedKeySuffix = errors.New("cascade: key ends with reserved override suffix")
	// ErrTypeConflict indicates the same key holds values of different kinds
	// across scopes.
	ErrTypeConflict = errors.New("cascade: type mismatch across scopes")
	// ErrIncompatibleAssignment indicates the assigned value cannot be coerced
	// to the kind already established for its key.
	ErrIncompatibleAssignment = errors.New("cascade: incompatible assignment")
	// ErrUnsupportedSliceStep indicates slice assignment or deletion with a
	// step different from one.
	ErrUnsupportedSliceStep = errors.New("cascade: only slices with step 1 are supported")
	// ErrScopeNotFound indicates a scope name that does not exist in the view,
	// either as a flatten target or through the scope accessor.
	ErrScopeNotFound = errors.New("cascade: scope not found")
)
