package natded

// Frames is the stack of open binders used to decide which type variables
// each binder declares as generic parameters.
//
// Every frame collects the atoms referenced while it is on top. When a frame
// is closed, only the atoms not already collected by an enclosing open frame
// are returned; those are captured from the enclosing binder instead.
type Frames struct {
	frames []*frame
	bound  []string
}

type frame struct {
	names []string
	seen  map[string]bool
}

// constants are never free variables.
var constants = map[string]bool{
	"True":  true,
	"False": true,
}

// Enter opens a new, empty frame.
func (f *Frames) Enter() {
	f.frames = append(f.frames, &frame{seen: map[string]bool{}})
}

// Add records a referenced atom in the top frame. Atoms bound by an enclosing
// quantifier or generalization are ignored.
func (f *Frames) Add(name string) {
	if len(f.frames) == 0 {
		panic("natded: Frames.Add called with no open frame")
	}
	if f.IsBound(name) {
		return
	}
	top := f.frames[len(f.frames)-1]
	if top.seen[name] {
		return
	}
	top.seen[name] = true
	top.names = append(top.names, name)
}

// Exit closes the top frame and returns its free variables in first-seen
// order.
func (f *Frames) Exit() []string {
	if len(f.frames) == 0 {
		panic("natded: Frames.Exit called with no open frame")
	}
	top := f.frames[len(f.frames)-1]
	f.frames = f.frames[:len(f.frames)-1]

	var free []string
	for _, name := range top.names {
		if constants[name] || f.openElsewhere(name) {
			continue
		}
		free = append(free, name)
	}
	return free
}

// Depth is the number of open frames.
func (f *Frames) Depth() int {
	return len(f.frames)
}

// Bind marks names as bound by a quantifier or generalization until the
// matching Unbind.
func (f *Frames) Bind(names ...string) {
	f.bound = append(f.bound, names...)
}

// Unbind releases the last n bound names.
func (f *Frames) Unbind(n int) {
	if n > len(f.bound) {
		panic("natded: Frames.Unbind past the bottom of the stack")
	}
	f.bound = f.bound[:len(f.bound)-n]
}

// IsBound reports whether name is bound by an enclosing quantifier or
// generalization.
func (f *Frames) IsBound(name string) bool {
	for _, b := range f.bound {
		if b == name {
			return true
		}
	}
	return false
}

func (f *Frames) openElsewhere(name string) bool {
	for _, fr := range f.frames {
		if fr.seen[name] {
			return true
		}
	}
	return false
}
