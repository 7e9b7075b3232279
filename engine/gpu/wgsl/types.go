package wgsl

// typeLayout holds the byte size and alignment for a WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// resourceDecl is one @group/@binding variable declaration.
type resourceDecl struct {
	group        int
	binding      int
	addressSpace string
	name         string
	typeName     string
}
