package domain

import "fmt"

// Collection names a document collection.
type Collection string

const (
	CollectionItems Collection = "items"
	CollectionUsers Collection = "users"
)

// DocumentRef addresses a single document.
type DocumentRef struct {
	Collection Collection
	ID         string
}

// ItemRef returns a reference to a content item document.
func ItemRef(id string) DocumentRef {
	return DocumentRef{Collection: CollectionItems, ID: id}
}

// UserRef returns a reference to a user document.
func UserRef(id string) DocumentRef {
	return DocumentRef{Collection: CollectionUsers, ID: id}
}

func (r DocumentRef) String() string {
	return string(r.Collection) + "/" + r.ID
}

// Field is a writable document field.
type Field string

const (
	FieldRatingMean   Field = "rating_mean"
	FieldRatingCount  Field = "rating_count"
	FieldDownloads    Field = "downloads"
	FieldLikes        Field = "likes"
	FieldDerivedScore Field = "derived_score"
	FieldPointBalance Field = "point_balance"
	FieldBadge        Field = "badge"
)

// Fields is a set of field values for a single document write.
type Fields map[Field]any

// MemberSet names one of an item's user-id sets.
type MemberSet string

const (
	MemberSetLikedBy      MemberSet = "liked_by"
	MemberSetDownloadedBy MemberSet = "downloaded_by"
)

// IsValid reports whether s is a known member set.
func (s MemberSet) IsValid() bool {
	return s == MemberSetLikedBy || s == MemberSetDownloadedBy
}

type fieldSpec struct {
	numeric bool
}

var writableFields = map[Collection]map[Field]fieldSpec{
	CollectionItems: {
		FieldRatingMean:   {numeric: false},
		FieldRatingCount:  {numeric: true},
		FieldDownloads:    {numeric: true},
		FieldLikes:        {numeric: true},
		FieldDerivedScore: {numeric: true},
	},
	CollectionUsers: {
		FieldPointBalance: {numeric: true},
		FieldBadge:        {numeric: false},
	},
}

// ValidateIncrement checks that field is an integer counter of the referenced collection.
func ValidateIncrement(ref DocumentRef, field Field) error {
	spec, ok := writableFields[ref.Collection][field]
	if !ok || !spec.numeric {
		return fmt.Errorf("%w: cannot increment %s on %s", ErrUnknownField, field, ref.Collection)
	}
	return nil
}

// ValidateFields checks that every field is writable on the referenced collection.
func ValidateFields(ref DocumentRef, fields Fields) error {
	allowed, ok := writableFields[ref.Collection]
	if !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrUnknownField, ref.Collection)
	}
	for f := range fields {
		if _, ok := allowed[f]; !ok {
			return fmt.Errorf("%w: %s on %s", ErrUnknownField, f, ref.Collection)
		}
	}
	return nil
}
