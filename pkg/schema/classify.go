package schema

// Shape is the mutually exclusive classification of a node that drives widget
// selection.
type Shape int

const (
	ShapeUnsupported Shape = iota
	ShapeEnum
	ShapeMultiEnum
	ShapeFile
	ShapeMultiFile
	ShapeDateTime
	ShapeColor
	ShapeBoolean
	ShapeDict
	ShapeNumber
	ShapeString
	ShapeObject
	ShapeList
	ShapeReference
	ShapeUnion
	// ShapeInlineObject covers untyped-by-reference objects declared inline.
	ShapeInlineObject
	// ShapeRaw covers untyped nodes and unrecognised arrays, edited as raw
	// text.
	ShapeRaw
)

var shapeNames = map[Shape]string{
	ShapeUnsupported:  "unsupported",
	ShapeEnum:         "enum",
	ShapeMultiEnum:    "multi-enum",
	ShapeFile:         "file",
	ShapeMultiFile:    "multi-file",
	ShapeDateTime:     "datetime",
	ShapeColor:        "color",
	ShapeBoolean:      "boolean",
	ShapeDict:         "dict",
	ShapeNumber:       "number",
	ShapeString:       "string",
	ShapeObject:       "object",
	ShapeList:         "list",
	ShapeReference:    "reference",
	ShapeUnion:        "union",
	ShapeInlineObject: "inline-object",
	ShapeRaw:          "raw",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// Classify tests the predicates in their fixed precedence order and returns
// the first matching shape. The node may have its items normalised (see
// IsListOfObjects), so callers pass a clone when the node is shared. The only
// error is a *ClassificationError.
func Classify(node Node, refs References) (Shape, error) {
	switch {
	case IsSingleEnum(node, refs):
		return ShapeEnum, nil
	case IsMultiEnum(node, refs):
		return ShapeMultiEnum, nil
	case IsSingleFile(node):
		return ShapeFile, nil
	case IsMultiFile(node):
		return ShapeMultiFile, nil
	case IsSingleDateTime(node):
		return ShapeDateTime, nil
	case IsSingleColor(node):
		return ShapeColor, nil
	case IsSingleBoolean(node):
		return ShapeBoolean, nil
	case IsSingleDict(node):
		return ShapeDict, nil
	case IsSingleNumber(node):
		return ShapeNumber, nil
	case IsSingleString(node):
		return ShapeString, nil
	case IsSingleObject(node, refs):
		return ShapeObject, nil
	}

	isList, err := IsListOfObjects(node, refs)
	if err != nil {
		return ShapeUnsupported, err
	}
	if isList {
		return ShapeList, nil
	}

	switch {
	case IsSingleReference(node):
		return ShapeReference, nil
	case IsUnion(node):
		return ShapeUnion, nil
	case node.Type() == "":
		return ShapeRaw, nil
	case node.Type() == "array":
		return ShapeRaw, nil
	case node.Type() == "object" && node.Properties() != nil:
		return ShapeInlineObject, nil
	default:
		return ShapeUnsupported, nil
	}
}
