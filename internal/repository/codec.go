package repository

import (
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var tDecimal = reflect.TypeOf(decimal.Decimal{})

// mongoRegistry extends the default registry with a decimal.Decimal codec.
// The driver's struct codec cannot see decimal's unexported fields and would
// otherwise store every money field as an empty document, so prices are
// persisted as Decimal128.
func mongoRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(tDecimal, bsoncodec.ValueEncoderFunc(decimalEncodeValue))
	reg.RegisterTypeDecoder(tDecimal, bsoncodec.ValueDecoderFunc(decimalDecodeValue))
	return reg
}

func decimalEncodeValue(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tDecimal {
		return bsoncodec.ValueEncoderError{Name: "decimalEncodeValue", Types: []reflect.Type{tDecimal}, Received: val}
	}

	dec := val.Interface().(decimal.Decimal)
	d128, err := primitive.ParseDecimal128(dec.String())
	if err != nil {
		return fmt.Errorf("failed to encode decimal %q: %w", dec.String(), err)
	}
	return vw.WriteDecimal128(d128)
}

func decimalDecodeValue(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != tDecimal {
		return bsoncodec.ValueDecoderError{Name: "decimalDecodeValue", Types: []reflect.Type{tDecimal}, Received: val}
	}

	var raw string
	switch vr.Type() {
	case bsontype.Decimal128:
		d128, err := vr.ReadDecimal128()
		if err != nil {
			return err
		}
		raw = d128.String()
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		raw = s
	case bsontype.Double:
		f, err := vr.ReadDouble()
		if err != nil {
			return err
		}
		val.Set(reflect.ValueOf(decimal.NewFromFloat(f)))
		return nil
	case bsontype.Int32:
		i, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		val.Set(reflect.ValueOf(decimal.NewFromInt32(i)))
		return nil
	case bsontype.Int64:
		i, err := vr.ReadInt64()
		if err != nil {
			return err
		}
		val.Set(reflect.ValueOf(decimal.NewFromInt(i)))
		return nil
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
		val.Set(reflect.ValueOf(decimal.Zero))
		return nil
	default:
		return fmt.Errorf("cannot decode %v into a decimal.Decimal", vr.Type())
	}

	dec, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("failed to decode decimal %q: %w", raw, err)
	}
	val.Set(reflect.ValueOf(dec))
	return nil
}
