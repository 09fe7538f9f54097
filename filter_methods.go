package reqfilter

import "github.com/mailru/easyjson"

func (ef Filter) String() string {
	j, _ := easyjson.Marshal(ef)
	return string(j)
}

func (ff FlatFilter) String() string {
	j, _ := easyjson.Marshal(ff)
	return string(j)
}

func (fs Filters) String() string {
	j, _ := easyjson.Marshal(fs)
	return string(j)
}
