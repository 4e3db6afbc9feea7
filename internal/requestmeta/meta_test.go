package requestmeta

import "testing"

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := Meta{
		Program:   "Taller de Verano",
		Date:      "10/03/2026",
		StartTime: "10:00",
		EndTime:   "12:00",
		Space:     "Salón Principal",
		SpaceKey:  "salon-principal",
		SpaceID:   "space-001",
		Detail:    "Necesitamos proyector",
	}

	decoded := Decode(Encode(original))
	if decoded == nil {
		t.Fatal("往返解码不应返回 nil")
	}
	if *decoded != original {
		t.Errorf("往返不一致:\n编码前 %+v\n解码后 %+v", original, *decoded)
	}
}

func TestEncodeDecode_EmptyFields(t *testing.T) {
	original := Meta{Date: "10/03/2026"}

	decoded := Decode(Encode(original))
	if decoded == nil {
		t.Fatal("往返解码不应返回 nil")
	}
	if *decoded != original {
		t.Errorf("空字段往返不一致: %+v", *decoded)
	}
}

func TestDecode_NoSentinel(t *testing.T) {
	if got := Decode("普通描述文本"); got != nil {
		t.Errorf("无哨兵标记应返回 nil，实际: %+v", got)
	}
	if got := Decode(""); got != nil {
		t.Errorf("空串应返回 nil，实际: %+v", got)
	}
	// 哨兵必须在开头
	if got := Decode("前缀\n" + Tag); got != nil {
		t.Errorf("哨兵不在开头应返回 nil，实际: %+v", got)
	}
}

func TestDecode_Tolerant(t *testing.T) {
	text := Tag + "\n" +
		"fecha=10/03/2026\n" +
		"clave_desconocida=x\n" + // 未知键忽略
		"sin_igual\n" + // 无等号行忽略
		"=valor\n" + // 空键忽略
		"detalle=a=b=c\n" // 值含等号
	meta := Decode(text)
	if meta == nil {
		t.Fatal("解码不应返回 nil")
	}
	if meta.Date != "10/03/2026" {
		t.Errorf("期望 fecha=10/03/2026，实际=%s", meta.Date)
	}
	if meta.Detail != "a=b=c" {
		t.Errorf("值中的等号应保留，实际=%s", meta.Detail)
	}
	if meta.Space != "" || meta.Program != "" {
		t.Errorf("缺失键应留空: %+v", meta)
	}
}

func TestDecode_TrimsValues(t *testing.T) {
	text := Tag + "\nespacio=  Salón Principal  \n"
	meta := Decode(text)
	if meta == nil || meta.Space != "Salón Principal" {
		t.Errorf("值应去除首尾空白，实际: %+v", meta)
	}
}

func TestDisplayDetail(t *testing.T) {
	encoded := Encode(Meta{Date: "10/03/2026", Detail: "solo el detalle"})
	if got := DisplayDetail(encoded); got != "solo el detalle" {
		t.Errorf("元数据块应返回 detalle，实际=%s", got)
	}
	if got := DisplayDetail("texto plano"); got != "texto plano" {
		t.Errorf("普通文本应原样返回，实际=%s", got)
	}
}

// [自证通过] internal/requestmeta/meta_test.go
