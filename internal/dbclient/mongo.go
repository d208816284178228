package dbclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"diagnote/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoExporter implements Exporter for MongoDB. Each history entry becomes
// one document in the target collection.
type mongoExporter struct {
	client *mongo.Client
	dbName string
}

// buildMongoURI returns the connection URI and database name for t.
func buildMongoURI(t *domain.ExportTarget, password string) (uri, dbName string) {
	// A full connection string (Atlas mongodb+srv:// or mongodb://) is used
	// as is; otherwise the URI is built from host and port.
	if strings.HasPrefix(t.Host, "mongodb+srv://") || strings.HasPrefix(t.Host, "mongodb://") {
		uri = t.Host
		// Atlas connection strings carry a password placeholder.
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", password)
			uri = strings.ReplaceAll(uri, "<db_password>", password)
		}
	} else {
		port := t.Port
		if port == 0 {
			port = 27017
		}
		if t.Username != "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", t.Username, password, t.Host, port)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%d", t.Host, port)
		}

		// authSource, replicaSet, ... from extra options.
		if t.ExtraJSON != "" && t.ExtraJSON != "{}" {
			var extras map[string]string
			if json.Unmarshal([]byte(t.ExtraJSON), &extras) == nil && len(extras) > 0 {
				keys := make([]string, 0, len(extras))
				for k := range extras {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				params := make([]string, 0, len(keys))
				for _, k := range keys {
					params = append(params, k+"="+extras[k])
				}
				uri += "/?" + strings.Join(params, "&")
			}
		}
	}

	dbName = t.Database
	if dbName == "" {
		dbName = databaseFromURI(uri)
	}
	if dbName == "" {
		dbName = "diagnote"
	}
	return uri, dbName
}

// databaseFromURI extracts the path segment of user:pass@host/DB?params.
func databaseFromURI(uri string) string {
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		if strings.HasPrefix(rest, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	slash := strings.Index(rest, "/")
	if slash == -1 {
		return ""
	}
	path := rest[slash+1:]
	if q := strings.Index(path, "?"); q != -1 {
		path = path[:q]
	}
	return path
}

func newMongoExporter(t *domain.ExportTarget, password string) (*mongoExporter, error) {
	uri, dbName := buildMongoURI(t, password)

	logURI := uri
	if password != "" {
		logURI = strings.ReplaceAll(logURI, password, "***")
	}
	log.Printf("[MONGO] Connecting with URI: %s (db %s)", logURI, dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoExporter{client: client, dbName: dbName}, nil
}

func (m *mongoExporter) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

// WriteEntries replaces the exported documents of every note in rows.
func (m *mongoExporter) WriteEntries(ctx context.Context, table string, rows []ExportRow) (int, error) {
	if table == "" {
		table = DefaultTable
	}
	if !ValidTableName(table) {
		return 0, fmt.Errorf("invalid collection name %q", table)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	coll := m.client.Database(m.dbName).Collection(table)

	notes := make([]string, 0)
	for id := range noteBounds(rows) {
		notes = append(notes, id)
	}
	if _, err := coll.DeleteMany(ctx, bson.M{"note_id": bson.M{"$in": notes}}); err != nil {
		return 0, fmt.Errorf("delete previous export: %w", err)
	}

	docs := make([]any, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r)
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert entries: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (m *mongoExporter) ClearNote(ctx context.Context, table, noteID string) error {
	if table == "" {
		table = DefaultTable
	}
	if !ValidTableName(table) {
		return fmt.Errorf("invalid collection name %q", table)
	}
	_, err := m.client.Database(m.dbName).Collection(table).DeleteMany(ctx, bson.M{"note_id": noteID})
	return err
}

func (m *mongoExporter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
