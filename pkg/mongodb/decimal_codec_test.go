package mongodb

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type payout struct {
	Amount decimal.Decimal            `bson:"amount"`
	Pools  map[string]decimal.Decimal `bson:"pools"`
}

func TestDecimalCodec(t *testing.T) {
	reg := Registry()
	in := payout{
		Amount: decimal.RequireFromString("45.10"),
		Pools:  map[string]decimal.Decimal{"champion": decimal.RequireFromString("0.01")},
	}

	raw, err := bson.MarshalWithRegistry(reg, in)
	require.NoError(t, err)
	assert.Equal(t, bsontype.Decimal128, bson.Raw(raw).Lookup("amount").Type)

	var out payout
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &out))
	assert.True(t, in.Amount.Equal(out.Amount))
	assert.True(t, in.Pools["champion"].Equal(out.Pools["champion"]))
}

func TestDecimalCodecReadsLegacyDoubles(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"amount": 9.5, "pools": bson.M{"admin": "1.25"}})
	require.NoError(t, err)

	var out payout
	require.NoError(t, bson.UnmarshalWithRegistry(Registry(), raw, &out))
	assert.Equal(t, "9.50", out.Amount.StringFixed(2))
	assert.Equal(t, "1.25", out.Pools["admin"].StringFixed(2))
}
