package assemble

import (
	"fmt"
	"log/slog"

	"chisel/internal/cparse"
	"chisel/internal/lookup"
	"chisel/internal/model"
	"chisel/internal/store"
)

// Assembler turns index lookups into a single structured document for
// downstream prompt consumption.
type Assembler struct {
	store  *store.Store
	engine *lookup.Engine
	log    *slog.Logger
}

// New builds an assembler over an open store.
func New(s *store.Store, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		store:  s,
		engine: lookup.NewEngine(s),
		log:    logger,
	}
}

// Open opens the index at indexPath for assembly. It returns
// store.ErrIndexNotFound when no index exists there.
func Open(indexPath string, logger *slog.Logger) (*Assembler, error) {
	s, err := store.OpenExisting(indexPath)
	if err != nil {
		return nil, err
	}
	return New(s, logger), nil
}

// Close releases the underlying store.
func (a *Assembler) Close() error {
	return a.store.Close()
}

// NotFoundMarker is the sentinel document returned when the target
// function is absent from the index. Callers branch on it instead of an
// error.
func NotFoundMarker(functionName string) string {
	return fmt.Sprintf("<!-- Function '%s' not found in index -->", functionName)
}

// Summary holds discovery results without rendering, for introspection.
type Summary struct {
	Function     string
	Params       []model.Param
	Factories    map[string][]string
	Initializers map[string][]string
}

// context is the collected raw material for one document.
type context struct {
	target       *model.FunctionInfo
	directTypes  []string                        // raw param types, struct_ptr only
	factories    map[string][]model.FunctionInfo // normalized type -> ranked
	initializers map[string][]model.FunctionInfo // normalized type -> ranked
	typeDefs     map[string]*model.TypeInfo      // normalized type -> definition
	auxTypes     []*model.TypeInfo               // resolved auxiliary types
}

// Assemble renders the construction-context document for a target
// function. A missing function yields the not-found marker, never an
// error.
func (a *Assembler) Assemble(functionName string) (string, error) {
	ctx, err := a.collect(functionName)
	if err != nil {
		return "", err
	}
	if ctx == nil {
		a.log.Debug("function not in index", "function", functionName)
		return NotFoundMarker(functionName), nil
	}
	return render(ctx), nil
}

// Summary runs only discovery, skipping document rendering. Returns nil
// when the function is absent.
func (a *Assembler) Summary(functionName string) (*Summary, error) {
	ctx, err := a.collect(functionName)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, nil
	}

	s := &Summary{
		Function:     ctx.target.Name,
		Params:       ctx.target.Params,
		Factories:    make(map[string][]string),
		Initializers: make(map[string][]string),
	}
	for typ, funcs := range ctx.factories {
		for _, f := range funcs {
			s.Factories[typ] = append(s.Factories[typ], f.Name)
		}
	}
	for typ, funcs := range ctx.initializers {
		for _, f := range funcs {
			s.Initializers[typ] = append(s.Initializers[typ], f.Name)
		}
	}
	return s, nil
}

func (a *Assembler) collect(functionName string) (*context, error) {
	target, err := a.engine.Function(functionName)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}

	var directTypes []string
	for _, p := range target.Params {
		if cparse.CategorizeType(p.Type) == model.StructPtr {
			directTypes = append(directTypes, p.Type)
		}
	}

	// Transitive discovery informs which constructors are reachable;
	// rendering later suppresses types that are not direct parameters.
	factories, err := a.engine.CollectFactories(directTypes, lookup.DefaultMaxDepth, functionName)
	if err != nil {
		return nil, err
	}

	initializers := make(map[string][]model.FunctionInfo)
	for _, ptype := range directTypes {
		key := cparse.NormalizeType(ptype)
		if _, ok := initializers[key]; ok {
			continue
		}
		inits, err := a.engine.FindInitializers(ptype, functionName)
		if err != nil {
			return nil, err
		}
		if len(inits) > 0 {
			initializers[key] = inits
		}
	}

	ctx := &context{
		target:       target,
		directTypes:  directTypes,
		factories:    factories,
		initializers: initializers,
		typeDefs:     make(map[string]*model.TypeInfo),
	}

	// Definitions for the directly requested types.
	for _, ptype := range directTypes {
		key := cparse.NormalizeType(ptype)
		if _, ok := ctx.typeDefs[key]; ok {
			continue
		}
		ti, err := a.store.TypeByName(ptype, key)
		if err != nil {
			return nil, err
		}
		if ti != nil {
			ctx.typeDefs[key] = ti
		}
	}

	// Enum types appearing as parameters of the top-ranked candidates.
	if err := a.collectEnumParams(ctx); err != nil {
		return nil, err
	}

	// Auxiliary types referenced in the top candidate signatures.
	if err := a.collectAuxTypes(ctx); err != nil {
		return nil, err
	}

	return ctx, nil
}

// collectEnumParams resolves enum types used by the top-3 factories and
// initializers of each relevant type.
func (a *Assembler) collectEnumParams(ctx *context) error {
	for _, key := range ctx.relevantKeys() {
		for _, f := range topN(ctx.factories[key], 3) {
			if err := a.addEnumParams(ctx, f); err != nil {
				return err
			}
		}
		for _, f := range topN(ctx.initializers[key], 3) {
			if err := a.addEnumParams(ctx, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Assembler) addEnumParams(ctx *context, f model.FunctionInfo) error {
	for _, p := range f.Params {
		if cparse.CategorizeType(p.Type) != model.Enum {
			continue
		}
		key := cparse.NormalizeType(p.Type)
		if _, ok := ctx.typeDefs[key]; ok {
			continue
		}
		ti, err := a.store.TypeByName(p.Type, key)
		if err != nil {
			return err
		}
		if ti != nil {
			ctx.typeDefs[key] = ti
		}
	}
	return nil
}

// collectAuxTypes resolves candidate auxiliary type identifiers found in
// the top-5 candidate signatures against the type table.
func (a *Assembler) collectAuxTypes(ctx *context) error {
	seen := make(map[string]bool)
	for key := range ctx.typeDefs {
		seen[key] = true
	}

	for _, key := range ctx.relevantKeys() {
		var sigs []string
		for _, f := range topN(ctx.factories[key], 5) {
			sigs = append(sigs, signature(&f))
		}
		for _, f := range topN(ctx.initializers[key], 5) {
			sigs = append(sigs, signature(&f))
		}
		for _, sig := range sigs {
			for _, ident := range auxTypeCandidates(sig) {
				if seen[ident] {
					continue
				}
				seen[ident] = true
				ti, err := a.store.TypeByName(ident, ident)
				if err != nil {
					return err
				}
				if ti != nil {
					ctx.auxTypes = append(ctx.auxTypes, ti)
				}
			}
		}
	}
	return nil
}

// relevantKeys returns the normalized names of the target's own
// struct-pointer parameter types, in parameter order without
// duplicates.
func (ctx *context) relevantKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, t := range ctx.directTypes {
		key := cparse.NormalizeType(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

func topN(funcs []model.FunctionInfo, n int) []model.FunctionInfo {
	if len(funcs) > n {
		return funcs[:n]
	}
	return funcs
}
