package generator

import (
	"encoding/csv"
	"log/slog"
	"math/rand"
	"os"
)

// maxPoolSize caps how many entries are read from each word list.
const maxPoolSize = 100

const (
	femaleNamesFile    = "names_woman.csv"
	maleNamesFile      = "names_man.csv"
	femaleSurnamesFile = "surnames_woman.csv"
	maleSurnamesFile   = "surnames_man.csv"
)

var fallbackNames = map[Gender][]string{
	GenderFemale: {"Tola", "Ola", "Lola"},
	GenderMale:   {"Mieszko", "Boleslaw", "Kazimierz"},
}

var fallbackSurnames = map[Gender][]string{
	GenderFemale: {"Kowalska", "Nowakowska", "Rada"},
	GenderMale:   {"Kowalski", "Nowakowski", "Rad"},
}

// NamePools holds gender-keyed name and surname word lists. Pools are
// never empty: a list that cannot be read falls back to a built-in pool.
type NamePools struct {
	names    map[Gender][]string
	surnames map[Gender][]string
}

// LoadNamePools reads the four word-list files from the working
// directory, substituting the built-in pools for any list that is
// missing or unreadable.
func LoadNamePools(logger *slog.Logger) *NamePools {
	return &NamePools{
		names: map[Gender][]string{
			GenderFemale: loadWordList(femaleNamesFile, fallbackNames[GenderFemale], logger),
			GenderMale:   loadWordList(maleNamesFile, fallbackNames[GenderMale], logger),
		},
		surnames: map[Gender][]string{
			GenderFemale: loadWordList(femaleSurnamesFile, fallbackSurnames[GenderFemale], logger),
			GenderMale:   loadWordList(maleSurnamesFile, fallbackSurnames[GenderMale], logger),
		},
	}
}

// loadWordList reads the first column of a headered CSV file, up to
// maxPoolSize entries.
func loadWordList(fileName string, fallback []string, logger *slog.Logger) []string {
	file, err := os.Open(fileName)
	if err != nil {
		logger.Warn("Word list unavailable, using built-in pool", "file", fileName, "error", err)
		return fallback
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		logger.Warn("Word list unreadable, using built-in pool", "file", fileName, "error", err)
		return fallback
	}

	var words []string
	for i, record := range records {
		if i == 0 {
			// Header row.
			continue
		}
		if len(words) == maxPoolSize {
			break
		}
		if len(record) > 0 && record[0] != "" {
			words = append(words, record[0])
		}
	}

	if len(words) == 0 {
		logger.Warn("Word list empty, using built-in pool", "file", fileName)
		return fallback
	}

	logger.Info("Loaded word list", "file", fileName, "entries", len(words))
	return words
}

func (p *NamePools) RandomName(rnd *rand.Rand, gender Gender) string {
	pool := p.names[gender]
	return pool[rnd.Intn(len(pool))]
}

func (p *NamePools) RandomSurname(rnd *rand.Rand, gender Gender) string {
	pool := p.surnames[gender]
	return pool[rnd.Intn(len(pool))]
}
