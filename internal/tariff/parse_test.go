package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransitPoints(t *testing.T) {
	tps := ParseTransitPoints("984700 ХАБАРОВСК 2 - 12км, 981008 ВЯЗЕМСКАЯ - 140 км")
	require.Len(t, tps, 2)
	assert.Equal(t, TransitPoint{Code: "984700", Name: "ХАБАРОВСК 2", LocalKM: 12}, tps[0])
	assert.Equal(t, TransitPoint{Code: "981008", Name: "ВЯЗЕМСКАЯ", LocalKM: 140}, tps[1])

	assert.Empty(t, ParseTransitPoints(""))
	assert.Empty(t, ParseTransitPoints("нет данных"))
}

func TestParseStationRowsSkipsHeaderAndDuplicates(t *testing.T) {
	rows := [][]string{
		{"Книга 2. Тарифное руководство"},
		{"№", "Наименование", "Операции", "Дорога", "Транзитные пункты", "Код"},
		{"1", "УГЛОВАЯ", "П", "ДВОС", "984700 ХАБАРОВСК - 0км", "984700"},
		{"2", "МОСКВА", "ТП", "МОСК", "181102 МОСКВА-СОРТИРОВОЧНАЯ - 5км", "181102"},
		{"", "примечание без кода"},
		{"3", "УГЛОВАЯ ДУБЛЬ", "П", "ДВОС", "", "984700"},
		{"4", "", "П", "ДВОС", "", "111111"},
		{"5", "КОРОТКАЯ", "П", "ДВОС", "", "12"},
	}

	got := ParseStationRows(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "УГЛОВАЯ", got[0].Name)
	assert.Equal(t, "984700", got[0].Code)
	assert.Equal(t, "ДВОС", got[0].Railway)
	require.Len(t, got[0].TransitPoints, 1)
	assert.Equal(t, 0, got[0].TransitPoints[0].LocalKM)
	assert.False(t, got[0].IsTransitPointStation())

	assert.Equal(t, "МОСКВА", got[1].Name)
	assert.True(t, got[1].IsTransitPointStation())
	assert.Equal(t, 5, got[1].TransitPoints[0].LocalKM)
}

func TestParseStationRowsNoData(t *testing.T) {
	assert.Empty(t, ParseStationRows(nil))
	assert.Empty(t, ParseStationRows([][]string{{"№", "Наименование"}}))
}

func matrixFixture() [][]string {
	return [][]string{
		{"Книга 3. Таблица расстояний"},
		{"", "Конечный пункт маршрута", "", "", ""},
		{"", "", "МОСКВА-", "ХАБА-", "УССУ-"},
		{"", "", "СОРТИРОВОЧНАЯ", "РОВСК", "РИЙСК"},
		{"№ п/п", "Начальный пункт", "1", "2", "3"},
		{"1", "МОСКВА-", "", "9 000", "9 100"},
		{"", "СОРТИРОВОЧНАЯ", "", "", ""},
		{"", "", "", "", ""},
		{"2", "ХАБАРОВСК", "", "", "0"},
		{"3", "УССУРИЙСК", "", "-4", ""},
	}
}

func TestParseMatrixRowsTransposedLayout(t *testing.T) {
	m, err := ParseMatrixRows("1 Рос", matrixFixture())
	require.NoError(t, err)
	assert.Equal(t, "1 Рос", m.Name)

	km, ok := m.Distance("МОСКВА-СОРТИРОВОЧНАЯ", "ХАБАРОВСК")
	require.True(t, ok)
	assert.Equal(t, 9000, km)

	km, ok = m.Distance("Хабаровск", "Москва Сортировочная")
	require.True(t, ok)
	assert.Equal(t, 9000, km)

	km, ok = m.Distance("УССУРИЙСК", "МОСКВА-СОРТИРОВОЧНАЯ")
	require.True(t, ok)
	assert.Equal(t, 9100, km)

	// zero and negative cells are not distances
	_, ok = m.Distance("ХАБАРОВСК", "УССУРИЙСК")
	assert.False(t, ok)
}

func TestParseMatrixRowsWithoutMarkers(t *testing.T) {
	_, err := ParseMatrixRows("broken", [][]string{{"a", "b"}, {"1", "2"}})
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}

func TestMatrixFirstOccurrenceWins(t *testing.T) {
	m := NewMatrix("m", []MatrixEntry{
		{From: "А", To: "Б", KM: 10},
		{From: "Б", To: "А", KM: 20},
		{From: "А", To: "В", KM: 0},
	})
	km, ok := m.Distance("Б", "А")
	require.True(t, ok)
	assert.Equal(t, 20, km)
	km, ok = m.Distance("А", "Б")
	require.True(t, ok)
	assert.Equal(t, 10, km)
	_, ok = m.Distance("А", "В")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestMatrixIgnoresBracketsAsSecondAttempt(t *testing.T) {
	m := NewMatrix("m", []MatrixEntry{{From: "НАХОДКА-ВОСТОЧНАЯ (ЭКСП.)", To: "ХАБАРОВСК", KM: 800}})
	km, ok := m.Distance("Находка-Восточная", "Хабаровск")
	require.True(t, ok)
	assert.Equal(t, 800, km)
}
