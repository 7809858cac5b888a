package msgpath

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/util"
	"github.com/wkalt/ros2dyn/util/log"
	"github.com/wkalt/ros2dyn/util/ros2msg"
	"github.com/wkalt/ros2dyn/util/schema"
	"golang.org/x/sync/errgroup"
)

/*
Package msgpath loads message and service definitions from source trees laid
out the way ROS2 packages are: <package>/msg/<Name>.msg and
<package>/srv/<Name>.srv, at any depth below a root. Several roots may be
given, in which case a definition found under an earlier root shadows the
same identifier under a later one.

The loaded Registry satisfies resolver.Registry. Service definitions
contribute their request and response messages to it.
*/

////////////////////////////////////////////////////////////////////////////////

const (
	msgPattern = "**/msg/*.msg"
	srvPattern = "**/srv/*.srv"
)

// Registry holds the definitions discovered under a set of roots.
type Registry struct {
	schemas  map[schema.MessageIdentifier]*schema.Schema
	services map[schema.MessageIdentifier]*schema.Service

	// messages and services share identifiers, so their sources are kept
	// apart.
	msgSources map[schema.MessageIdentifier]string
	srvSources map[schema.MessageIdentifier]string
}

type source struct {
	root    string
	file    string
	service bool
}

type loaded struct {
	source  source
	schema  *schema.Schema
	service *schema.Service
}

func (l loaded) id() schema.MessageIdentifier {
	if l.service != nil {
		return l.service.ID
	}
	return l.schema.ID
}

// Load discovers and parses all definitions under roots. Any definition that
// fails to parse fails the load.
func Load(ctx context.Context, roots ...string) (*Registry, error) {
	sources := []source{}
	for _, root := range roots {
		found, err := discover(root)
		if err != nil {
			return nil, err
		}
		sources = append(sources, found...)
	}

	results := make([]loaded, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := parseFile(src)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &Registry{
		schemas:    make(map[schema.MessageIdentifier]*schema.Schema),
		services:   make(map[schema.MessageIdentifier]*schema.Service),
		msgSources: make(map[schema.MessageIdentifier]string),
		srvSources: make(map[schema.MessageIdentifier]string),
	}
	for _, result := range results {
		r.add(ctx, result)
	}
	for pkg, group := range util.GroupBy(results, func(l loaded) string { return l.id().Package }) {
		log.Debugw(ctx, "loaded package", "package", pkg, "definitions", len(group))
	}
	return r, nil
}

func (r *Registry) add(ctx context.Context, l loaded) {
	id := l.id()
	file := path.Join(l.source.root, l.source.file)
	sources := util.When(l.service != nil, r.srvSources, r.msgSources)
	if existing, ok := sources[id]; ok {
		log.Warnw(ctx, "shadowed definition", "id", id.String(), "file", file, "using", existing)
		return
	}
	sources[id] = file
	if l.service != nil {
		r.services[id] = l.service
		r.schemas[l.service.Request.ID] = l.service.Request
		r.schemas[l.service.Response.ID] = l.service.Response
		return
	}
	r.schemas[id] = l.schema
}

func discover(root string) ([]source, error) {
	fsys := os.DirFS(root)
	sources := []source{}
	for _, pattern := range []string{msgPattern, srvPattern} {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", root, err)
		}
		for _, match := range matches {
			sources = append(sources, source{
				root:    root,
				file:    match,
				service: pattern == srvPattern,
			})
		}
	}
	return sources, nil
}

func parseFile(src source) (loaded, error) {
	data, err := fs.ReadFile(os.DirFS(src.root), src.file)
	if err != nil {
		return loaded{}, fmt.Errorf("failed to read %s: %w", src.file, err)
	}
	pkg, name, err := identify(src.file)
	if err != nil {
		return loaded{}, err
	}
	if src.service {
		service, err := ros2msg.ParseService(pkg, name, data)
		if err != nil {
			return loaded{}, DefinitionError{File: path.Join(src.root, src.file), Err: err}
		}
		return loaded{source: src, service: service}, nil
	}
	sch, err := ros2msg.Parse(pkg, name, data)
	if err != nil {
		return loaded{}, DefinitionError{File: path.Join(src.root, src.file), Err: err}
	}
	return loaded{source: src, schema: sch}, nil
}

// identify derives the package and type name from a path ending in
// <package>/{msg,srv}/<Name>.<ext>.
func identify(file string) (string, string, error) {
	dir, base := path.Split(file)
	name := strings.TrimSuffix(base, path.Ext(base))
	pkg := path.Base(path.Dir(strings.TrimSuffix(dir, "/")))
	if !schema.ValidPackageName(pkg) {
		return "", "", DefinitionError{File: file, Err: fmt.Errorf("invalid package name %q", pkg)}
	}
	return pkg, name, nil
}

// Lookup returns the message schema registered under id.
func (r *Registry) Lookup(id schema.MessageIdentifier) (*schema.Schema, error) {
	s, ok := r.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", resolver.ErrNotFound, id)
	}
	return s, nil
}

// Service returns the service registered under id.
func (r *Registry) Service(id schema.MessageIdentifier) (*schema.Service, bool) {
	s, ok := r.services[id]
	return s, ok
}

// Source returns the file a message or service was loaded from. A message
// and a service of the same name report the message. Request and response
// messages report the file of their service.
func (r *Registry) Source(id schema.MessageIdentifier) (string, bool) {
	if file, ok := r.msgSources[id]; ok {
		return file, true
	}
	if file, ok := r.srvSources[id]; ok {
		return file, true
	}
	for sid, svc := range r.services {
		if svc.Request.ID == id || svc.Response.ID == id {
			return r.srvSources[sid], true
		}
	}
	return "", false
}

// Messages returns the identifiers of all message schemas, sorted.
func (r *Registry) Messages() []schema.MessageIdentifier {
	return sortedIDs(r.schemas)
}

// Services returns the identifiers of all services, sorted.
func (r *Registry) Services() []schema.MessageIdentifier {
	return sortedIDs(r.services)
}

func sortedIDs[V any](m map[schema.MessageIdentifier]V) []schema.MessageIdentifier {
	keys := make(map[string]schema.MessageIdentifier, len(m))
	for id := range m {
		keys[id.String()] = id
	}
	ids := make([]schema.MessageIdentifier, 0, len(m))
	for _, k := range util.Okeys(keys) {
		ids = append(ids, keys[k])
	}
	return ids
}
