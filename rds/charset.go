package rds

import "strings"

// RDS basic character set, upper half (EN 50067 annex E, table E.1).
// 0xff is unassigned.
var charsetHigh = [128]rune{
	'á', 'à', 'é', 'è', 'í', 'ì', 'ó', 'ò', 'ú', 'ù', 'Ñ', 'Ç', 'Ş', 'ß', '¡', 'Ĳ',
	'â', 'ä', 'ê', 'ë', 'î', 'ï', 'ô', 'ö', 'û', 'ü', 'ñ', 'ç', 'ş', 'ğ', 'ı', 'ĳ',
	'ª', 'α', '©', '‰', 'Ğ', 'ě', 'ň', 'ő', 'π', '€', '£', '$', '←', '↑', '→', '↓',
	'º', '¹', '²', '³', '±', 'İ', 'ń', 'ű', 'µ', '¿', '÷', '°', '¼', '½', '¾', '§',
	'Á', 'À', 'É', 'È', 'Í', 'Ì', 'Ó', 'Ò', 'Ú', 'Ù', 'Ř', 'Č', 'Š', 'Ž', 'Ð', 'Ŀ',
	'Â', 'Ä', 'Ê', 'Ë', 'Î', 'Ï', 'Ô', 'Ö', 'Û', 'Ü', 'ř', 'č', 'š', 'ž', 'đ', 'ŀ',
	'Ã', 'Å', 'Æ', 'Œ', 'ŷ', 'Ý', 'Õ', 'Ø', 'Þ', 'Ŋ', 'Ŕ', 'Ć', 'Ś', 'Ź', 'Ŧ', 'ð',
	'ã', 'å', 'æ', 'œ', 'ŵ', 'ý', 'õ', 'ø', 'þ', 'ŋ', 'ŕ', 'ć', 'ś', 'ź', 'ŧ', ' ',
}

func rdsRune(c byte) rune {
	switch {
	case c >= 0x20 && c < 0x7f:
		return rune(c)
	case c >= 0x80:
		return charsetHigh[c-0x80]
	}
	return ' '
}

// renderGrid converts a character grid to a string, unwritten positions as space.
func renderGrid(buf []byte, mask []bool) string {
	var sb strings.Builder
	for i, c := range buf {
		if !mask[i] {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteRune(rdsRune(c))
	}
	return sb.String()
}
