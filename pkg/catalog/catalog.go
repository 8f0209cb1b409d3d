package catalog

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// TableInfo holds the metadata the catalog keeps per table.
type TableInfo struct {
	File       page.DbFile
	Name       string
	PrimaryKey string
}

// ID returns the table's identifier, which is its file's id.
func (ti *TableInfo) ID() primitives.TableID {
	return ti.File.GetID()
}

// Catalog tracks the tables known to the database. It maintains bidirectional
// mappings between table names and ids so either can be resolved in O(1).
//
// Thread-safe for concurrent access.
type Catalog struct {
	nameToTable map[string]*TableInfo
	idToTable   map[primitives.TableID]*TableInfo
	logger      *zap.Logger
	mutex       sync.RWMutex
}

// NewCatalog creates an empty catalog. A nil logger disables logging.
func NewCatalog(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		nameToTable: make(map[string]*TableInfo),
		idToTable:   make(map[primitives.TableID]*TableInfo),
		logger:      logger.With(zap.String("component", "catalog")),
	}
}

// AddTable registers file under name. An existing table with the same name or the
// same id is replaced and its file closed, unless it is file itself. An empty name
// is replaced by a random UUID.
func (c *Catalog) AddTable(file page.DbFile, name, primaryKey string) error {
	if file == nil {
		return dberror.ErrInvalidArgument.Detailf("file cannot be nil")
	}
	if name == "" {
		name = uuid.NewString()
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	id := file.GetID()
	replaced := c.removeExisting(name, id)

	info := &TableInfo{File: file, Name: name, PrimaryKey: primaryKey}
	c.nameToTable[name] = info
	c.idToTable[id] = info

	for _, old := range replaced {
		if old.File == file {
			continue
		}
		if err := old.File.Close(); err != nil {
			c.logger.Warn("failed to close replaced table file",
				zap.String("table", old.Name), zap.Uint64("table_id", uint64(old.ID())), zap.Error(err))
		}
	}

	c.logger.Debug("table added", zap.String("table", name), zap.Uint64("table_id", uint64(id)))
	return nil
}

// removeExisting drops any entry clashing with name or id and returns the dropped
// entries. Must hold the write lock.
func (c *Catalog) removeExisting(name string, id primitives.TableID) []*TableInfo {
	var replaced []*TableInfo
	if old, ok := c.nameToTable[name]; ok {
		delete(c.idToTable, old.ID())
		delete(c.nameToTable, name)
		replaced = append(replaced, old)
	}
	if old, ok := c.idToTable[id]; ok {
		delete(c.nameToTable, old.Name)
		delete(c.idToTable, id)
		replaced = append(replaced, old)
	}
	return replaced
}

func (c *Catalog) byID(id primitives.TableID) (*TableInfo, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	info, ok := c.idToTable[id]
	if !ok {
		return nil, dberror.ErrNotFound.Detailf("table with id %d not found", id)
	}
	return info, nil
}

// GetTableID resolves a table name to its id.
func (c *Catalog) GetTableID(name string) (primitives.TableID, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	info, ok := c.nameToTable[name]
	if !ok {
		return 0, dberror.ErrNotFound.Detailf("table '%s' not found", name)
	}
	return info.ID(), nil
}

// GetTableName resolves a table id to its name.
func (c *Catalog) GetTableName(id primitives.TableID) (string, error) {
	info, err := c.byID(id)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

// GetTupleDesc returns the schema of table id.
func (c *Catalog) GetTupleDesc(id primitives.TableID) (*tuple.TupleDescription, error) {
	info, err := c.byID(id)
	if err != nil {
		return nil, err
	}
	return info.File.GetTupleDesc(), nil
}

// GetDatabaseFile returns the file backing table id.
func (c *Catalog) GetDatabaseFile(id primitives.TableID) (page.DbFile, error) {
	info, err := c.byID(id)
	if err != nil {
		return nil, err
	}
	return info.File, nil
}

// GetPrimaryKey returns the primary key column name of table id, possibly empty.
func (c *Catalog) GetPrimaryKey(id primitives.TableID) (string, error) {
	info, err := c.byID(id)
	if err != nil {
		return "", err
	}
	return info.PrimaryKey, nil
}

// TableIDs returns the ids of every registered table in ascending order.
func (c *Catalog) TableIDs() []primitives.TableID {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return slices.Sorted(maps.Keys(c.idToTable))
}

// RemoveTable unregisters the named table and closes its file.
func (c *Catalog) RemoveTable(name string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	info, ok := c.nameToTable[name]
	if !ok {
		return dberror.ErrNotFound.Detailf("table '%s' not found", name)
	}

	delete(c.nameToTable, name)
	delete(c.idToTable, info.ID())
	return info.File.Close()
}

// Clear unregisters every table and closes their files. Close failures are logged.
func (c *Catalog) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for id, info := range c.idToTable {
		if err := info.File.Close(); err != nil {
			c.logger.Warn("failed to close table file",
				zap.String("table", info.Name), zap.Uint64("table_id", uint64(id)), zap.Error(err))
		}
	}

	c.nameToTable = make(map[string]*TableInfo)
	c.idToTable = make(map[primitives.TableID]*TableInfo)
}
