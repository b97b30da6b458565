package keyboard

import (
	"reflect"
	"testing"
)

func TestChunk(t *testing.T) {
	btns := []InlineBtn{{Unique: "a"}, {Unique: "b"}, {Unique: "c"}, {Unique: "d"}}
	rows := Chunk(btns, 3)
	if len(rows) != 2 || len(rows[0]) != 3 || len(rows[1]) != 1 {
		t.Fatalf("unexpected layout: %+v", rows)
	}
	if got := Chunk(btns, 0); len(got) != 4 {
		t.Fatalf("expected one button per row, got %d rows", len(got))
	}
}

func TestInlineButtonsRows(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "🕒 Кожні 3 години", Unique: "weather_3h"}, {Text: "🕕 Кожні 6 годин", Unique: "weather_6h"}},
		[]InlineBtn{{Text: "🏛️ Київ", Unique: "city", Data: "Kyiv"}},
	)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(markup.InlineKeyboard))
	}
	city := markup.InlineKeyboard[1][0]
	if city.Text != "🏛️ Київ" || city.Data != "Kyiv" {
		t.Fatalf("unexpected button: %+v", city)
	}
	if got := Uniques(markup); !reflect.DeepEqual(got, []string{"weather_3h", "weather_6h", "city"}) {
		t.Fatalf("Uniques = %v", got)
	}
}
