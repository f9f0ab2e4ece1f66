package archive

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamwar/battle-services/internal/gamesvc/engine"
)

const settlementsCollection = "settlements"

// Settlement is the immutable record written when a game leaves Active:
// the payout breakdown on a win, the refund breakdown on an abort.
type Settlement struct {
	GameID    int64      `bson:"game_id" json:"game_id"`
	Kind      string     `bson:"kind" json:"kind"` // 'payout' or 'refund'
	Winner    string     `bson:"winner" json:"winner"`
	Pool      string     `bson:"pool" json:"pool"`
	Transfers []Transfer `bson:"transfers" json:"transfers"`
	SettledAt time.Time  `bson:"settled_at" json:"settled_at"`
}

type Transfer struct {
	Address string `bson:"address" json:"address"`
	Amount  string `bson:"amount" json:"amount"`
}

// Archive keeps the history of settled games in MongoDB. It is an audit
// trail, not a source of truth; writes are best effort after the ledger
// transaction already committed.
type Archive struct {
	db *mongo.Database
}

// Connect dials MONGODB_URI and returns an archive over the database named
// in the URI path.
func Connect() (*Archive, error) {
	mongoURI := os.Getenv("MONGODB_URI")

	uri, err := url.Parse(mongoURI)
	if err != nil {
		return nil, err
	}

	dbName := strings.TrimPrefix(uri.Path, "/")
	if dbName == "" {
		dbName = "battle"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &Archive{db: client.Database(dbName)}, nil
}

func (a *Archive) Close(ctx context.Context) error {
	return a.db.Client().Disconnect(ctx)
}

// RecordSettlement archives the settlement of one game.
func (a *Archive) RecordSettlement(ctx context.Context, gameID int64, kind, winner, pool string, transfers []engine.Transfer) error {
	doc := Settlement{
		GameID:    gameID,
		Kind:      kind,
		Winner:    winner,
		Pool:      pool,
		SettledAt: time.Now().UTC(),
	}
	for _, t := range transfers {
		doc.Transfers = append(doc.Transfers, Transfer{
			Address: t.Address,
			Amount:  t.Amount.String(),
		})
	}

	_, err := a.db.Collection(settlementsCollection).InsertOne(ctx, doc)
	return err
}

// GetSettlement fetches the archived settlement of a game, nil when the
// game never settled.
func (a *Archive) GetSettlement(ctx context.Context, gameID int64) (*Settlement, error) {
	var doc Settlement
	err := a.db.Collection(settlementsCollection).
		FindOne(ctx, bson.M{"game_id": gameID}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}
