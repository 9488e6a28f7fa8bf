package entry

import "strings"

// spokenWords maps spoken tokens (English and transliterated Hindi) to their
// canonical form.
var spokenWords = map[string]string{
	"coma": ",", "cama": ",",
	"dudh": "milk", "feet": "fat", "phat": "fat",
	"naam": "name", "point": ".",

	"zero": "0", "shunya": "0",
	"one": "1", "ek": "1",
	"two": "2", "to": "2", "do": "2",
	"three": "3", "teen": "3",
	"four": "4", "char": "4", "for": "4",
	"five": "5", "panch": "5",
	"six": "6", "chhe": "6",
	"seven": "7", "saat": "7",
	"eight": "8", "aath": "8",
	"nine": "9", "nau": "9",
	"ten": "10", "das": "10",
	"eleven": "11", "gyarah": "11",
	"twelve": "12", "barah": "12",
	"thirteen": "13", "terah": "13",
	"fourteen": "14", "chaudah": "14",
	"fifteen": "15", "pandrah": "15",
	"sixteen": "16", "solah": "16",
	"seventeen": "17", "satrah": "17",
	"eighteen": "18", "atharah": "18",
	"nineteen": "19", "unnis": "19",
	"twenty": "20", "bees": "20", "biss": "20",
	"twenty-one": "21", "ikkees": "21",
	"twenty-two": "22", "baees": "22",
	"twenty-three": "23", "teees": "23",
	"twenty-four": "24", "chaubees": "24",
	"twenty-five": "25", "pachchees": "25",
	"twenty-six": "26", "chhabbees": "26",
	"twenty-seven": "27", "sattaees": "27",
	"twenty-eight": "28", "athaeess": "28",
	"twenty-nine": "29", "untees": "29",
	"thirty": "30", "tees": "30", "tis": "30",
	"thirty-one": "31", "ikattis": "31",
	"thirty-two": "32", "battis": "32",
	"thirty-three": "33", "taitis": "33",
	"thirty-four": "34", "chauntis": "34",
	"thirty-five": "35", "paintis": "35",
	"thirty-six": "36", "chhattis": "36",
	"thirty-seven": "37", "saintis": "37",
	"thirty-eight": "38", "adhaitis": "38",
	"thirty-nine": "39", "untalis": "39",
	"forty": "40", "chalis": "40",
	"forty-one": "41", "iktalis": "41",
	"forty-two": "42", "bayalis": "42",
	"forty-three": "43", "tetalis": "43",
	"forty-four": "44", "chauntalis": "44",
	"forty-five": "45", "paintalis": "45",
	"forty-six": "46", "chiyalis": "46",
	"forty-seven": "47", "saintalis": "47",
	"forty-eight": "48", "adhaitalis": "48",
	"forty-nine": "49", "unchaas": "49",
	"fifty": "50", "pachas": "50",
}

// Normalize lowercases text, splits it on whitespace and replaces every known
// spoken token with its canonical form. Unknown tokens are kept verbatim.
func Normalize(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for i, word := range words {
		if canonical, ok := spokenWords[word]; ok {
			words[i] = canonical
		}
	}
	return strings.Join(words, " ")
}
