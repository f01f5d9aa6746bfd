package service

import (
	"strconv"
	"strings"
)

// TargetPath строит каталог для группы с днем day по пути исходного файла.
// Первый сегмент отделяется двойным разделителем, два последних сегмента
// (день исходного файла и имя файла) заменяются на "d=<day>":
//
//	a/b/y=2022/m=06/d=24/sample.zip, 5 -> a//b/y=2022/m=06/d=5
func TargetPath(fileName string, day int) string {
	segments := strings.Split(fileName, "/")

	var b strings.Builder
	b.WriteString(segments[0])
	b.WriteString("/")
	for _, seg := range segments[1:max(len(segments)-2, 1)] {
		b.WriteString("/")
		b.WriteString(seg)
	}
	b.WriteString("/d=")
	b.WriteString(strconv.Itoa(day))
	return b.String()
}
