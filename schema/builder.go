package schema

// FieldBuilder declares a Field fluently, e.g.
//
//	NewField("short_name").Size(32).Unique().Build()
//
// Fields are strings and not nullable unless told otherwise.
type FieldBuilder struct {
	field Field
}

func NewField(name string) *FieldBuilder {
	return &FieldBuilder{field: Field{Name: name, Type: FieldTypeString}}
}

func (fb *FieldBuilder) typed(t FieldType) *FieldBuilder {
	fb.field.Type = t
	return fb
}

func (fb *FieldBuilder) String() *FieldBuilder   { return fb.typed(FieldTypeString) }
func (fb *FieldBuilder) Text() *FieldBuilder     { return fb.typed(FieldTypeText) }
func (fb *FieldBuilder) UUID() *FieldBuilder     { return fb.typed(FieldTypeUUID) }
func (fb *FieldBuilder) Int() *FieldBuilder      { return fb.typed(FieldTypeInt) }
func (fb *FieldBuilder) Int64() *FieldBuilder    { return fb.typed(FieldTypeInt64) }
func (fb *FieldBuilder) Float() *FieldBuilder    { return fb.typed(FieldTypeFloat) }
func (fb *FieldBuilder) Bool() *FieldBuilder     { return fb.typed(FieldTypeBool) }
func (fb *FieldBuilder) DateTime() *FieldBuilder { return fb.typed(FieldTypeDateTime) }

// Size bounds the column length of string fields
func (fb *FieldBuilder) Size(n int) *FieldBuilder {
	fb.field.Size = n
	return fb
}

func (fb *FieldBuilder) PrimaryKey() *FieldBuilder {
	fb.field.PrimaryKey = true
	return fb
}

func (fb *FieldBuilder) Nullable() *FieldBuilder {
	fb.field.Nullable = true
	return fb
}

func (fb *FieldBuilder) Unique() *FieldBuilder {
	fb.field.Unique = true
	return fb
}

func (fb *FieldBuilder) Index() *FieldBuilder {
	fb.field.Index = true
	return fb
}

func (fb *FieldBuilder) Build() Field {
	return fb.field
}
