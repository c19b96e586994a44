package zisim

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/equal1/labdrivers/pkg/ziapi"
)

// Op identifies a recorded session call.
type Op string

const (
	OpGetInt      Op = "getInt"
	OpSetInt      Op = "setInt"
	OpGetDouble   Op = "getDouble"
	OpSetDouble   Op = "setDouble"
	OpGetString   Op = "getString"
	OpSetString   Op = "setString"
	OpVectorRead  Op = "vectorRead"
	OpVectorWrite Op = "vectorWrite"
	OpSync        Op = "sync"
	OpListNodes   Op = "listNodes"
)

// Call is one recorded session operation.
type Call struct {
	Op    Op
	Path  string
	Value any
}

// node is one simulated device node: its schema plus current value.
type node struct {
	info ziapi.NodeInfo
	ival int64
	dval float64
	sval string
	vec  []float64
}

// Server is an in-memory data server. It implements ziapi.Session.
type Server struct {
	mu     sync.Mutex
	device string
	nodes  map[string]*node // keyed by lower-cased path
	calls  []Call
	awg    *AWGModule
	closed bool
}

// NewServer creates a simulator for the given device ID (e.g. "dev8888")
// with an empty schema. Use AddNode or SeedHDAWG to populate it.
func NewServer(deviceID string) *Server {
	s := &Server{
		device: strings.ToLower(deviceID),
		nodes:  make(map[string]*node),
	}
	s.awg = newAWGModule(s)
	return s
}

// Device returns the simulated device ID.
func (s *Server) Device() string { return s.device }

// AddNode registers a schema node. The node's initial value is the zero
// value of its type.
func (s *Server) AddNode(info ziapi.NodeInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[strings.ToLower(info.Node)] = &node{info: info}
}

// Calls returns a copy of the recorded call log.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsFor returns the recorded calls addressing the given path.
func (s *Server) CallsFor(path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if strings.EqualFold(c.Path, path) {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// record appends to the call log. Caller must hold mu.
func (s *Server) record(op Op, path string, value any) {
	s.calls = append(s.calls, Call{Op: op, Path: path, Value: value})
}

// lookup finds a node and checks the session is open. Caller must hold mu.
func (s *Server) lookup(path string) (*node, error) {
	if s.closed {
		return nil, ziapi.ErrSessionClosed
	}
	n, ok := s.nodes[strings.ToLower(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ziapi.ErrPathNotFound, path)
	}
	return n, nil
}

func readable(n *node) bool {
	return strings.Contains(n.info.Properties, ziapi.PropertyRead)
}

func writable(n *node) bool {
	return strings.Contains(n.info.Properties, ziapi.PropertyWrite)
}

func isIntKind(n *node) bool {
	return n.info.Type == ziapi.TypeInteger || n.info.Type == ziapi.TypeIntegerEnum
}

// GetInt reads an integer node.
func (s *Server) GetInt(_ context.Context, path string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(path)
	if err != nil {
		return 0, err
	}
	if !isIntKind(n) {
		return 0, fmt.Errorf("%w: %s is %s", ziapi.ErrTypeMismatch, path, n.info.Type)
	}
	if !readable(n) {
		return 0, fmt.Errorf("%w: %s", ziapi.ErrWriteOnly, path)
	}
	s.record(OpGetInt, path, nil)
	return n.ival, nil
}

// SetInt writes an integer node.
func (s *Server) SetInt(_ context.Context, path string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(path)
	if err != nil {
		return err
	}
	if !isIntKind(n) {
		return fmt.Errorf("%w: %s is %s", ziapi.ErrTypeMismatch, path, n.info.Type)
	}
	if !writable(n) {
		return fmt.Errorf("%w: %s", ziapi.ErrReadOnly, path)
	}
	s.record(OpSetInt, path, value)
	n.ival = value
	return nil
}

// GetDouble reads a double node.
func (s *Server) GetDouble(_ context.Context, path string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(path)
	if err != nil {
		return 0, err
	}
	if n.info.Type != ziapi.TypeDouble {
		return 0, fmt.Errorf("%w: %s is %s", ziapi.ErrTypeMismatch, path, n.info.Type)
	}
	if !readable(n) {
		return 0, fmt.Errorf("%w: %s", ziapi.ErrWriteOnly, path)
	}
	s.record(OpGetDouble, path, nil)
	return n.dval, nil
}

// SetDouble writes a double node.
func (s *Server) SetDouble(_ context.Context, path string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(path)
	if err != nil {
		return err
	}
	if n.info.Type != ziapi.TypeDouble {
		return fmt.Errorf("%w: %s is %s", ziapi.ErrTypeMismatch, path, n.info.Type)
	}
	if !writable(n) {
		return fmt.Errorf("%w: %s", ziapi.ErrReadOnly, path)
	}
	s.record(OpSetDouble, path, value)
	n.dval = value
	return nil
}

// GetString reads a string node.
func (s *Server) GetString(_ context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(path)
	if err != nil {
		return "", err
	}
	if n.info.Type != ziapi.TypeString {
		return "", fmt.Errorf("%w: %s is %s", ziapi.ErrTypeMismatch, path, n.info.Type)
	}
	if !readable(n) {
		return "", fmt.Errorf("%w: %s", ziapi.ErrWriteOnly, path)
	}
	s.record(OpGetString, path, nil)
	return n.sval, nil
}

// SetString writes a string node.
func (s *Server) SetString(_ context.Context, path string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(path)
	if err != nil {
		return err
	}
	if n.info.Type != ziapi.TypeString {
		return fmt.Errorf("%w: %s is %s", ziapi.ErrTypeMismatch, path, n.info.Type)
	}
	if !writable(n) {
		return fmt.Errorf("%w: %s", ziapi.ErrReadOnly, path)
	}
	s.record(OpSetString, path, value)
	n.sval = value
	return nil
}

// VectorRead reads a vector node.
func (s *Server) VectorRead(_ context.Context, path string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(path)
	if err != nil {
		return nil, err
	}
	if n.info.Type != ziapi.TypeVectorData {
		return nil, fmt.Errorf("%w: %s is %s", ziapi.ErrTypeMismatch, path, n.info.Type)
	}
	if !readable(n) {
		return nil, fmt.Errorf("%w: %s", ziapi.ErrWriteOnly, path)
	}
	s.record(OpVectorRead, path, nil)
	out := make([]float64, len(n.vec))
	copy(out, n.vec)
	return out, nil
}

// VectorWrite writes a vector node.
func (s *Server) VectorWrite(_ context.Context, path string, values []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(path)
	if err != nil {
		return err
	}
	if n.info.Type != ziapi.TypeVectorData {
		return fmt.Errorf("%w: %s is %s", ziapi.ErrTypeMismatch, path, n.info.Type)
	}
	if !writable(n) {
		return fmt.Errorf("%w: %s", ziapi.ErrReadOnly, path)
	}
	s.record(OpVectorWrite, path, values)
	n.vec = make([]float64, len(values))
	copy(n.vec, values)
	return nil
}

// Sync records a synchronization barrier. The simulator applies writes
// immediately, so the barrier itself is a no-op.
func (s *Server) Sync(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ziapi.ErrSessionClosed
	}
	s.record(OpSync, "", nil)
	return nil
}

// ListNodesJSON serves the schema of every node under path matching
// flags. Only ListSettingsOnly filtering is modeled; the remaining flag
// bits select subsets the simulator does not track and yield all nodes.
func (s *Server) ListNodesJSON(_ context.Context, path string, flags ziapi.ListFlag) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ziapi.ErrSessionClosed
	}
	s.record(OpListNodes, path, flags)

	prefix := strings.ToLower(path)
	tree := make(map[string]ziapi.NodeInfo)
	for key, n := range s.nodes {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if flags&ziapi.ListSettingsOnly != 0 &&
			!strings.Contains(n.info.Properties, ziapi.PropertySetting) {
			continue
		}
		tree[strings.ToUpper(n.info.Node)] = n.info
	}
	return ziapi.EncodeNodeTree(tree)
}

// AWGModule returns the simulated compiler module.
func (s *Server) AWGModule() (ziapi.AWGModule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ziapi.ErrSessionClosed
	}
	return s.awg, nil
}

// Compiler returns the simulated module with its scripting surface
// exposed, for tests.
func (s *Server) Compiler() *AWGModule { return s.awg }

// Close closes the session. Further calls fail with ErrSessionClosed.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Compile-time interface satisfaction check.
var _ ziapi.Session = (*Server)(nil)
