package nodestore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/aDogCalledSpot/uaevents/pkg/uaevents"
)

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("node store closed")

// SQLiteStore persists the address space to SQLite. Nodes, references and
// variable values survive restarts; monitored items are session-scoped
// runtime objects and are kept in memory.
//
// It is suitable for single-process production use.
type SQLiteStore struct {
	db *sql.DB

	mu        sync.Mutex
	monitored map[uaevents.NodeID][]*uaevents.MonitoredItem
	closed    bool
}

// Compile-time interface check.
var _ uaevents.NodeStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a SQLite-backed store. The path should be a file
// path (e.g. "./space.db") or ":memory:" for testing. A fresh database is
// seeded with the namespace-0 subset.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			class INTEGER NOT NULL,
			browse_ns INTEGER NOT NULL,
			browse_name TEXT NOT NULL,
			display_name TEXT NOT NULL,
			type_def TEXT,
			value BLOB
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create nodes table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS refs (
			source TEXT NOT NULL,
			ref_type TEXT NOT NULL,
			target TEXT NOT NULL,
			PRIMARY KEY (source, ref_type, target)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create refs table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_refs_target ON refs(target)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create refs index: %w", err)
	}

	s := &SQLiteStore{
		db:        db,
		monitored: make(map[uaevents.NodeID][]*uaevents.MonitoredItem),
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("count nodes: %w", err)
	}
	if count == 0 {
		if err := seedNamespaceZero(s); err != nil {
			db.Close()
			return nil, fmt.Errorf("seed namespace 0: %w", err)
		}
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLiteStore) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// addNode inserts a bare node. Part of the spaceBuilder contract.
func (s *SQLiteStore) addNode(info uaevents.NodeInfo, value any) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	typeDef := ""
	if !info.TypeDefinition.IsNull() {
		typeDef = keyOf(info.TypeDefinition)
	}
	result, err := s.db.Exec(`
		INSERT OR IGNORE INTO nodes (id, class, browse_ns, browse_name, display_name, type_def, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, keyOf(info.ID), int(info.Class), info.BrowseName.Namespace, info.BrowseName.Name,
		info.DisplayName, typeDef, encoded)
	if err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("node %s already exists", info.ID)
	}
	return nil
}

// addReference links two existing nodes. Part of the spaceBuilder contract.
func (s *SQLiteStore) addReference(source, refType, target uaevents.NodeID) error {
	for _, id := range []uaevents.NodeID{source, target} {
		if _, err := s.nodeInfo(id); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(`
		INSERT OR IGNORE INTO refs (source, ref_type, target) VALUES (?, ?, ?)
	`, keyOf(source), keyOf(refType), keyOf(target)); err != nil {
		return fmt.Errorf("insert reference: %w", err)
	}
	return nil
}

// AddReferenceType adds a reference-type node below the given supertype.
func (s *SQLiteStore) AddReferenceType(id uaevents.NodeID, name string, supertype uaevents.NodeID) error {
	return s.addTypeNode(id, name, supertype, uaevents.ClassReferenceType)
}

// AddObjectType adds an object-type node below the given supertype.
func (s *SQLiteStore) AddObjectType(id uaevents.NodeID, name string, supertype uaevents.NodeID) error {
	return s.addTypeNode(id, name, supertype, uaevents.ClassObjectType)
}

func (s *SQLiteStore) addTypeNode(id uaevents.NodeID, name string, supertype uaevents.NodeID, class uaevents.NodeClass) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	info := uaevents.NodeInfo{
		ID:          id,
		Class:       class,
		BrowseName:  uaevents.NewQualifiedName(id.Namespace, name),
		DisplayName: name,
	}
	if err := s.addNode(info, nil); err != nil {
		return err
	}
	if !supertype.IsNull() {
		return s.addReference(supertype, uaevents.IDHasSubtype, id)
	}
	return nil
}

// AddObject adds an object node under parent via refType.
func (s *SQLiteStore) AddObject(id uaevents.NodeID, parent, refType uaevents.NodeID, name string, typeDef uaevents.NodeID) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	info := uaevents.NodeInfo{
		ID:             id,
		Class:          uaevents.ClassObject,
		BrowseName:     uaevents.NewQualifiedName(id.Namespace, name),
		DisplayName:    name,
		TypeDefinition: typeDef,
	}
	if err := s.addNode(info, nil); err != nil {
		return err
	}
	if !parent.IsNull() {
		return s.addReference(parent, refType, id)
	}
	return nil
}

// AddVariable adds a variable node under parent via refType and returns its
// identifier.
func (s *SQLiteStore) AddVariable(parent, refType uaevents.NodeID, name string, value any) (uaevents.NodeID, error) {
	if err := s.checkOpen(); err != nil {
		return uaevents.NodeID{}, err
	}
	return s.addVariable(parent, refType, name, value)
}

func (s *SQLiteStore) addVariable(parent, refType uaevents.NodeID, name string, value any) (uaevents.NodeID, error) {
	id := uaevents.NewGUIDID(1, uuid.New())
	info := uaevents.NodeInfo{
		ID:          id,
		Class:       uaevents.ClassVariable,
		BrowseName:  uaevents.NewQualifiedName(0, name),
		DisplayName: name,
	}
	if err := s.addNode(info, value); err != nil {
		return uaevents.NodeID{}, err
	}
	if !parent.IsNull() {
		if err := s.addReference(parent, refType, id); err != nil {
			return uaevents.NodeID{}, err
		}
	}
	return id, nil
}

// RegisterMonitoredItem registers a monitored item on a node.
func (s *SQLiteStore) RegisterMonitoredItem(node uaevents.NodeID, item *uaevents.MonitoredItem) error {
	if _, err := s.nodeInfo(node); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitored[node] = append(s.monitored[node], item)
	return nil
}

// UnregisterMonitoredItem removes a monitored item registration.
func (s *SQLiteStore) UnregisterMonitoredItem(node uaevents.NodeID, item *uaevents.MonitoredItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.monitored[node]
	for i, registered := range items {
		if registered == item {
			s.monitored[node] = append(items[:i], items[i+1:]...)
			return
		}
	}
}

// nodeInfo implements graphReader.
func (s *SQLiteStore) nodeInfo(id uaevents.NodeID) (uaevents.NodeInfo, error) {
	var (
		class       int
		browseNS    int
		browseName  string
		displayName string
		typeDef     string
	)
	err := s.db.QueryRow(`
		SELECT class, browse_ns, browse_name, display_name, type_def
		FROM nodes WHERE id = ?
	`, keyOf(id)).Scan(&class, &browseNS, &browseName, &displayName, &typeDef)
	if err == sql.ErrNoRows {
		return uaevents.NodeInfo{}, fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, id)
	}
	if err != nil {
		return uaevents.NodeInfo{}, fmt.Errorf("load node: %w", err)
	}

	info := uaevents.NodeInfo{
		ID:          id,
		Class:       uaevents.NodeClass(class),
		BrowseName:  uaevents.NewQualifiedName(uint16(browseNS), browseName),
		DisplayName: displayName,
	}
	if typeDef != "" {
		td, err := parseKey(typeDef)
		if err != nil {
			return uaevents.NodeInfo{}, err
		}
		info.TypeDefinition = td
	}
	return info, nil
}

// nodeRefs implements graphReader. Forward rows come first, then derived
// inverse rows, each in insertion order.
func (s *SQLiteStore) nodeRefs(id uaevents.NodeID) ([]uaevents.Reference, error) {
	key := keyOf(id)

	var refs []uaevents.Reference
	rows, err := s.db.Query(`
		SELECT ref_type, target FROM refs WHERE source = ? ORDER BY rowid
	`, key)
	if err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var refType, target string
		if err := rows.Scan(&refType, &target); err != nil {
			return nil, err
		}
		rt, err := parseKey(refType)
		if err != nil {
			return nil, err
		}
		tg, err := parseKey(target)
		if err != nil {
			return nil, err
		}
		refs = append(refs, uaevents.Reference{ReferenceType: rt, Target: tg})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	inverse, err := s.db.Query(`
		SELECT ref_type, source FROM refs WHERE target = ? ORDER BY rowid
	`, key)
	if err != nil {
		return nil, fmt.Errorf("load inverse references: %w", err)
	}
	defer inverse.Close()
	for inverse.Next() {
		var refType, source string
		if err := inverse.Scan(&refType, &source); err != nil {
			return nil, err
		}
		rt, err := parseKey(refType)
		if err != nil {
			return nil, err
		}
		src, err := parseKey(source)
		if err != nil {
			return nil, err
		}
		refs = append(refs, uaevents.Reference{ReferenceType: rt, Target: src, Inverse: true})
	}
	return refs, inverse.Err()
}

// GetNode implements uaevents.NodeStore.
func (s *SQLiteStore) GetNode(id uaevents.NodeID) (uaevents.NodeInfo, error) {
	if err := s.checkOpen(); err != nil {
		return uaevents.NodeInfo{}, err
	}
	return s.nodeInfo(id)
}

// AddObjectNode implements uaevents.NodeStore.
func (s *SQLiteStore) AddObjectNode(typeDef uaevents.NodeID, displayName string) (uaevents.NodeID, error) {
	if err := s.checkOpen(); err != nil {
		return uaevents.NodeID{}, err
	}

	typeInfo, err := s.nodeInfo(typeDef)
	if err != nil {
		return uaevents.NodeID{}, fmt.Errorf("type definition: %w", err)
	}
	if typeInfo.Class != uaevents.ClassObjectType {
		return uaevents.NodeID{}, fmt.Errorf("type definition %s is a %s, not an object type", typeDef, typeInfo.Class)
	}

	id := uaevents.NewGUIDID(1, uuid.New())
	info := uaevents.NodeInfo{
		ID:             id,
		Class:          uaevents.ClassObject,
		DisplayName:    displayName,
		TypeDefinition: typeDef,
	}
	if err := s.addNode(info, nil); err != nil {
		return uaevents.NodeID{}, err
	}

	aggregates, err := aggregationKinds(s)
	if err != nil {
		return uaevents.NodeID{}, err
	}
	chain, err := typeChain(s, typeDef)
	if err != nil {
		return uaevents.NodeID{}, err
	}

	seen := make(map[uaevents.QualifiedName]bool)
	for _, typeID := range chain {
		refs, err := s.nodeRefs(typeID)
		if err != nil {
			return uaevents.NodeID{}, err
		}
		for _, ref := range refs {
			if ref.Inverse || !aggregates[ref.ReferenceType] {
				continue
			}
			decl, err := s.nodeInfo(ref.Target)
			if err != nil || decl.Class != uaevents.ClassVariable {
				continue
			}
			if seen[decl.BrowseName] {
				continue
			}
			seen[decl.BrowseName] = true
			declValue, err := s.readValueRaw(ref.Target)
			if err != nil {
				return uaevents.NodeID{}, err
			}
			if _, err := s.addVariable(id, ref.ReferenceType, decl.BrowseName.Name, declValue); err != nil {
				return uaevents.NodeID{}, err
			}
		}
	}
	return id, nil
}

// DeleteNode implements uaevents.NodeStore.
func (s *SQLiteStore) DeleteNode(id uaevents.NodeID, recursive bool) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.nodeInfo(id); err != nil {
		return err
	}

	if recursive {
		aggregates, err := aggregationKinds(s)
		if err != nil {
			return err
		}
		refs, err := s.nodeRefs(id)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if ref.Inverse || !aggregates[ref.ReferenceType] {
				continue
			}
			if _, err := s.nodeInfo(ref.Target); err != nil {
				continue
			}
			if err := s.DeleteNode(ref.Target, true); err != nil {
				return err
			}
		}
	}

	key := keyOf(id)
	if _, err := s.db.Exec(`DELETE FROM refs WHERE source = ? OR target = ?`, key, key); err != nil {
		return fmt.Errorf("delete references: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM nodes WHERE id = ?`, key); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}

	s.mu.Lock()
	delete(s.monitored, id)
	s.mu.Unlock()
	return nil
}

// References implements uaevents.NodeStore.
func (s *SQLiteStore) References(id uaevents.NodeID) ([]uaevents.Reference, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if _, err := s.nodeInfo(id); err != nil {
		return nil, err
	}
	return s.nodeRefs(id)
}

// MonitoredItems implements uaevents.NodeStore.
func (s *SQLiteStore) MonitoredItems(id uaevents.NodeID) ([]*uaevents.MonitoredItem, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if _, err := s.nodeInfo(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monitored[id], nil
}

// TranslateBrowsePath implements uaevents.NodeStore.
func (s *SQLiteStore) TranslateBrowsePath(start uaevents.NodeID, path []uaevents.RelativePathElement) ([]uaevents.NodeID, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return translatePath(s, start, path)
}

func (s *SQLiteStore) readValueRaw(id uaevents.NodeID) (any, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT value FROM nodes WHERE id = ?`, keyOf(id)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read value: %w", err)
	}
	return decodeValue(data)
}

// ReadValue implements uaevents.NodeStore.
func (s *SQLiteStore) ReadValue(id uaevents.NodeID) (any, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	info, err := s.nodeInfo(id)
	if err != nil {
		return nil, err
	}
	if info.Class != uaevents.ClassVariable {
		return nil, fmt.Errorf("node %s is a %s, not a variable", id, info.Class)
	}
	return s.readValueRaw(id)
}

// WriteValue implements uaevents.NodeStore.
func (s *SQLiteStore) WriteValue(id uaevents.NodeID, value any) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	info, err := s.nodeInfo(id)
	if err != nil {
		return err
	}
	if info.Class != uaevents.ClassVariable {
		return fmt.Errorf("node %s is a %s, not a variable", id, info.Class)
	}
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`UPDATE nodes SET value = ? WHERE id = ?`, encoded, keyOf(id)); err != nil {
		return fmt.Errorf("write value: %w", err)
	}
	return nil
}
