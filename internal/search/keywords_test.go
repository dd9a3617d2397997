package search

import (
	"reflect"
	"testing"
)

func TestBuildSearchKeywords(t *testing.T) {
	// "rec" stopword, material defissiz variant bilan qo'shiladi
	got := BuildSearchKeywords("REC PET-G", "PET-G")
	want := []string{"pet-g", "petg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildSearchKeywords = %v, want %v", got, want)
	}
}

func TestBuildSearchKeywordsDedup(t *testing.T) {
	got := BuildSearchKeywords("REC PLA", "PLA")
	want := []string{"pla"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildSearchKeywords = %v, want %v", got, want)
	}
}

func TestBuildSearchKeywordsTitleWords(t *testing.T) {
	got := BuildSearchKeywords("REC TPU Flex", "TPU")
	want := []string{"tpu", "flex"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildSearchKeywords = %v, want %v", got, want)
	}
}
