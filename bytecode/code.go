package bytecode

import "strings"

// Code represents a compiled code block (module body, function body, class
// body). It is immutable after creation and safe for concurrent use across
// multiple VM instances, matching how the rest of this module treats
// compiled artifacts as read-only templates shared between goroutines.
type Code struct {
	id       string
	name     string
	isNamed  bool
	children []*Code
	parent   *Code

	mode         Mode
	instructions []Instruction
	constants    []any
	names        []Name
	blocks       []Block
	labels       map[string]int

	source     string
	filename   string
	functionID string

	locations []SourceLocation

	maxCallArgs int
	localCount  int
	globalCount int

	globalNames []string
	localNames  []string
	envKeys     []string
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	ID           string
	Name         string
	IsNamed      bool
	Children     []*Code
	Mode         Mode
	Instructions []Instruction
	Constants    []any
	Names        []Name
	Blocks       []Block
	Labels       map[string]int
	Source       string
	Filename     string
	FunctionID   string
	Locations    []SourceLocation
	MaxCallArgs  int
	LocalCount   int
	GlobalCount  int
	GlobalNames  []string
	LocalNames   []string
	EnvKeys      []string
}

// NewCode creates a new immutable Code from the given parameters. Input
// slices are copied to ensure immutability.
func NewCode(params CodeParams) *Code {
	var children []*Code
	if len(params.Children) > 0 {
		children = make([]*Code, len(params.Children))
		copy(children, params.Children)
	}

	labels := make(map[string]int, len(params.Labels))
	for k, v := range params.Labels {
		labels[k] = v
	}

	code := &Code{
		id:           params.ID,
		name:         params.Name,
		isNamed:      params.IsNamed,
		children:     children,
		mode:         params.Mode,
		instructions: copyInstructions(params.Instructions),
		constants:    copyAny(params.Constants),
		names:        copyNames(params.Names),
		blocks:       copyBlocks(params.Blocks),
		labels:       labels,
		source:       params.Source,
		filename:     params.Filename,
		functionID:   params.FunctionID,
		locations:    copyLocations(params.Locations),
		maxCallArgs:  params.MaxCallArgs,
		localCount:   params.LocalCount,
		globalCount:  params.GlobalCount,
		globalNames:  copyStrings(params.GlobalNames),
		localNames:   copyStrings(params.LocalNames),
		envKeys:      copyStrings(params.EnvKeys),
	}

	for _, child := range code.children {
		child.parent = code
	}

	return code
}

func (c *Code) ID() string         { return c.id }
func (c *Code) Name() string       { return c.name }
func (c *Code) IsNamed() bool      { return c.isNamed }
func (c *Code) FunctionID() string { return c.functionID }
func (c *Code) Mode() Mode         { return c.mode }

func (c *Code) ChildCount() int      { return len(c.children) }
func (c *Code) ChildAt(i int) *Code  { return c.children[i] }

func (c *Code) InstructionCount() int           { return len(c.instructions) }
func (c *Code) InstructionAt(i int) Instruction { return c.instructions[i] }

func (c *Code) ConstantCount() int    { return len(c.constants) }
func (c *Code) ConstantAt(i int) any  { return c.constants[i] }

func (c *Code) NameCount() int     { return len(c.names) }
func (c *Code) NameAt(i int) Name  { return c.names[i] }

func (c *Code) BlockCount() int      { return len(c.blocks) }
func (c *Code) BlockAt(i int) Block  { return c.blocks[i] }

// Label resolves a named jump target to an instruction index.
func (c *Code) Label(name string) (int, bool) {
	ip, ok := c.labels[name]
	return ip, ok
}

func (c *Code) Source() string   { return c.source }
func (c *Code) Filename() string { return c.filename }

func (c *Code) LocalCount() int  { return c.localCount }
func (c *Code) GlobalCount() int { return c.globalCount }
func (c *Code) MaxCallArgs() int { return c.maxCallArgs }

// LocationAt returns the source location for the instruction at the given
// index, used to populate a frame Snapshot when an error is raised.
func (c *Code) LocationAt(ip int) SourceLocation {
	if ip < 0 || ip >= len(c.locations) {
		return SourceLocation{}
	}
	return c.locations[ip]
}

func (c *Code) LocationCount() int { return len(c.locations) }

func (c *Code) GlobalNameAt(i int) string {
	if i < 0 || i >= len(c.globalNames) {
		return ""
	}
	return c.globalNames[i]
}

func (c *Code) GlobalNameCount() int { return len(c.globalNames) }

func (c *Code) LocalNameAt(i int) string {
	if i < 0 || i >= len(c.localNames) {
		return ""
	}
	return c.localNames[i]
}

func (c *Code) LocalNameCount() int { return len(c.localNames) }

// Flatten returns this code and all descendants (nested function bodies) as
// a flat slice.
func (c *Code) Flatten() []*Code {
	codes := []*Code{c}
	for _, child := range c.children {
		codes = append(codes, child.Flatten()...)
	}
	return codes
}

// GetSourceLine returns the source line at the given 1-based line number,
// looked up against the root code's source so nested function bodies report
// correct line numbers.
func (c *Code) GetSourceLine(lineNum int) string {
	if lineNum < 1 {
		return ""
	}
	source := c.getRootSource()
	if source == "" {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

func (c *Code) getRootSource() string {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root.source
}

// Stats returns statistics about this code block, useful for auditing a
// loaded module before execution.
func (c *Code) Stats() Stats {
	functionCount := 0
	for i := 0; i < c.ConstantCount(); i++ {
		if _, ok := c.ConstantAt(i).(*Function); ok {
			functionCount++
		}
	}
	return Stats{
		InstructionCount: c.InstructionCount(),
		ConstantCount:    c.ConstantCount(),
		GlobalCount:      c.GlobalCount(),
		FunctionCount:    functionCount,
		SourceBytes:      len(c.source),
	}
}

// GlobalNames returns a copy of all global variable names.
func (c *Code) GlobalNames() []string {
	if len(c.globalNames) == 0 {
		return nil
	}
	names := make([]string, len(c.globalNames))
	copy(names, c.globalNames)
	return names
}

// EnvKeys returns a copy of the global names supplied by the embedder's
// environment at load time, a subset of GlobalNames.
func (c *Code) EnvKeys() []string {
	if len(c.envKeys) == 0 {
		return nil
	}
	keys := make([]string, len(c.envKeys))
	copy(keys, c.envKeys)
	return keys
}

// FunctionNames returns the names of all named functions defined in this
// code block. Anonymous functions (lambdas) are not included.
func (c *Code) FunctionNames() []string {
	var names []string
	for i := 0; i < c.ConstantCount(); i++ {
		if fn, ok := c.ConstantAt(i).(*Function); ok {
			if name := fn.Name(); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}
