package errors

// This is the single source of truth for sentinel values. The internal codec packages return
// these bare; the codec and schema packages wrap them with E() or pkg/errors so errors.Is
// checks work across package boundaries.

// Runtime codec errors.
var (
	ErrBufferTooShort   = New("protogen: buffer is shorter than the structure's minimum length")
	ErrConstantMismatch = New("protogen: constant field decoded to an unexpected value")
	ErrBounds           = New("protogen: access beyond the end of the buffer")
	ErrValue            = New("protogen: in-memory value does not match the field")
)

// Codec argument errors. These indicate a caller passed a width or cursor the codec
// cannot represent.
var (
	ErrBitWidth  = New("protogen: bit width out of range")
	ErrByteWidth = New("protogen: byte width out of range")
	ErrCursor    = New("protogen: cursor bit count out of range")
	ErrTypeToken = New("protogen: unrecognized type token")
)

// Schema construction errors.
var (
	ErrForwardReference = New("protogen: field references a later sibling")
	ErrSelfReference    = New("protogen: field references itself")
	ErrUnknownReference = New("protogen: field references an unknown sibling")
	ErrReferenceType    = New("protogen: referenced field cannot be used as a count or condition")
	ErrDuplicateField   = New("protogen: duplicate field name")
	ErrUnknownConstant  = New("protogen: unknown named constant")
	ErrEmptyStructure   = New("protogen: structure has no fields")
	ErrFieldName        = New("protogen: field has no name")
)

// Configuration errors.
var (
	ErrConfig = New("protogen: invalid protocol configuration")
)
