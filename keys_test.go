package spacer_test

import (
	"reflect"
	"testing"

	"github.com/spacerhq/spacer"
)

func TestKeys_OrderAndDedup(t *testing.T) {
	ks := spacer.Keys(wrapItem, wrapData, wrapItem)
	if want := []wrapKey{wrapItem, wrapData}; !reflect.DeepEqual(ks.All(), want) {
		t.Fatalf("All = %v, want %v", ks.All(), want)
	}
	if ks.Len() != 2 || !ks.Contains(wrapData) || ks.Contains("other") {
		t.Fatalf("unexpected membership for %v", ks.All())
	}
}

func TestKeys_AllReturnsCopy(t *testing.T) {
	ks := spacer.Keys(wrapData)
	all := ks.All()
	all[0] = "mutated"
	if ks.All()[0] != wrapData {
		t.Fatalf("KeySet was mutated through All()")
	}
}

func TestNoKeys(t *testing.T) {
	if spacer.NoKeys().Len() != 0 || len(spacer.NoKeys().All()) != 0 {
		t.Fatalf("NoKeys should be empty")
	}
}
