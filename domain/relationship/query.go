package relationship

import (
	"fmt"
	"sort"
	"strings"

	"github.com/timewave-computer/causality/infrastructure/cache"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// DomainRelationshipProvider contributes edges owned by a remote domain
// to a cross-domain path query. Implementations are consulted only when
// a query sets AllowCrossDomain and the provider's Domain passes the
// query's domain filter.
type DomainRelationshipProvider interface {
	Domain() string
	RelatedTo(id hash.ContentId) []*Relationship
}

// Query parameterizes a bounded path search.
type Query struct {
	Source           hash.ContentId
	Target           *hash.ContentId
	MaxDepth         int
	Types            []Type
	DomainFilter     []string
	MaxResults       int
	AllowCrossDomain bool
}

// Path is one discovered walk from Query.Source.
type Path struct {
	Nodes         []hash.ContentId
	Relationships []RelationshipID
}

// Result is the outcome of a path query.
type Result struct {
	Paths    []Path
	Truncated bool
}

func (q Query) cacheKey() string {
	var b strings.Builder
	b.WriteString(q.Source.String())
	b.WriteString("|")
	if q.Target != nil {
		b.WriteString(q.Target.String())
	}
	b.WriteString("|")
	fmt.Fprintf(&b, "%d|%t|", q.MaxDepth, q.AllowCrossDomain)
	types := make([]string, len(q.Types))
	for i, t := range q.Types {
		types[i] = t.String()
	}
	sort.Strings(types)
	b.WriteString(strings.Join(types, ","))
	return b.String()
}

// QueryExecutor answers bounded BFS path queries over a Tracker, with a
// TTL+LRU cache (§4.2's "cache invalidation" rule: any write touching a
// resource invalidates every cached entry whose key mentions it).
type QueryExecutor struct {
	tracker   *Tracker
	providers map[string]DomainRelationshipProvider
	cache     *cache.Cache[string, Result]
	keysByRes map[hash.ContentId]map[string]struct{}
}

// NewQueryExecutor builds a QueryExecutor backed by tracker, subscribing
// to tracker's write-invalidation notifications.
func NewQueryExecutor(tracker *Tracker, cfg cache.Config) *QueryExecutor {
	e := &QueryExecutor{
		tracker:   tracker,
		providers: make(map[string]DomainRelationshipProvider),
		cache:     cache.New[string, Result](cfg, nil),
		keysByRes: make(map[hash.ContentId]map[string]struct{}),
	}
	tracker.OnInvalidate(e.invalidateTouching)
	return e
}

// RegisterProvider adds a cross-domain relationship provider.
func (e *QueryExecutor) RegisterProvider(p DomainRelationshipProvider) {
	e.providers[p.Domain()] = p
}

func (e *QueryExecutor) invalidateTouching(id hash.ContentId) {
	for key := range e.keysByRes[id] {
		e.cache.Remove(key)
	}
	delete(e.keysByRes, id)
}

func (e *QueryExecutor) trackKey(id hash.ContentId, key string) {
	set, ok := e.keysByRes[id]
	if !ok {
		set = make(map[string]struct{})
		e.keysByRes[id] = set
	}
	set[key] = struct{}{}
}

type frontierEntry struct {
	node          hash.ContentId
	path          []hash.ContentId
	relationships []RelationshipID
}

// Execute runs the bounded BFS described in §4.2: a node is marked
// visited when first enqueued so cycles are broken, and when Target is
// set the search keeps exploring other branches up to MaxResults rather
// than stopping at the first hit.
func (e *QueryExecutor) Execute(q Query) Result {
	key := q.cacheKey()
	if cached, ok := e.cache.Get(key); ok {
		return cached
	}

	if q.MaxDepth <= 0 {
		q.MaxDepth = 1
	}
	if q.MaxResults <= 0 {
		q.MaxResults = 100
	}

	visited := map[hash.ContentId]struct{}{q.Source: {}}
	queue := []frontierEntry{{node: q.Source, path: []hash.ContentId{q.Source}}}
	result := Result{}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.path)-1 >= q.MaxDepth {
			continue
		}

		for _, edge := range e.neighbors(cur.node, q) {
			other := otherEndpoint(edge, cur.node)
			if _, seen := visited[other]; seen {
				continue
			}
			visited[other] = struct{}{}

			nextPath := append(append([]hash.ContentId(nil), cur.path...), other)
			nextRels := append(append([]RelationshipID(nil), cur.relationships...), edge.ID)

			reached := q.Target == nil || other.Equal(*q.Target)
			if reached {
				result.Paths = append(result.Paths, Path{Nodes: nextPath, Relationships: nextRels})
				if len(result.Paths) >= q.MaxResults {
					result.Truncated = true
					e.store(q, key, result)
					return result
				}
			}
			queue = append(queue, frontierEntry{node: other, path: nextPath, relationships: nextRels})
		}
	}

	e.store(q, key, result)
	return result
}

func (e *QueryExecutor) store(q Query, key string, result Result) {
	e.cache.Set(key, result)
	e.trackKey(q.Source, key)
	if q.Target != nil {
		e.trackKey(*q.Target, key)
	}
	for _, p := range result.Paths {
		for _, n := range p.Nodes {
			e.trackKey(n, key)
		}
	}
}

func (e *QueryExecutor) neighbors(id hash.ContentId, q Query) []*Relationship {
	all := e.tracker.OfResource(id)
	if q.AllowCrossDomain {
		for domain, provider := range e.providers {
			if !domainPasses(domain, q.DomainFilter) {
				continue
			}
			all = append(all, provider.RelatedTo(id)...)
		}
	}
	if len(q.Types) == 0 {
		return all
	}
	filtered := make([]*Relationship, 0, len(all))
	for _, r := range all {
		for _, t := range q.Types {
			if r.Type == t {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered
}

func domainPasses(domain string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, d := range filter {
		if d == domain {
			return true
		}
	}
	return false
}

func otherEndpoint(r *Relationship, from hash.ContentId) hash.ContentId {
	if r.SourceID.Equal(from) {
		return r.TargetID
	}
	return r.SourceID
}
