package components

import "github.com/csml-sh/csml-engine/src/primitive"

func str(s string) *primitive.Literal { return primitive.Str(s) }

// builtinSchemas is the canonical component set from spec §4.3.
func builtinSchemas() []*ComponentSchema {
	return []*ComponentSchema{
		{Name: "Text", ContentType: "text", Params: []ParamSchema{
			{Name: "text", Required: true, Type: TypeString},
		}},
		{Name: "Image", ContentType: "image", Params: []ParamSchema{
			{Name: "url", Required: true, Type: TypeString},
		}},
		{Name: "Audio", ContentType: "audio", Params: []ParamSchema{
			{Name: "url", Required: true, Type: TypeString},
		}},
		{Name: "Video", ContentType: "video", Params: []ParamSchema{
			{Name: "url", Required: true, Type: TypeString},
		}},
		{Name: "File", ContentType: "file", Params: []ParamSchema{
			{Name: "url", Required: true, Type: TypeString},
		}},
		{Name: "Url", ContentType: "url", Params: []ParamSchema{
			{Name: "url", Required: true, Type: TypeString},
			{Name: "text", Required: false, Type: TypeString, DefaultValue: []*primitive.Literal{str("")}},
		}},
		{Name: "Button", ContentType: "button", Params: []ParamSchema{
			{Name: "title", Required: true, Type: TypeString, AddValue: "accepts"},
			{Name: "payload", Required: false, Type: TypeString, AddValue: "accepts"},
		}},
		{Name: "Card", ContentType: "card", Params: []ParamSchema{
			{Name: "title", Required: true, Type: TypeString},
			{Name: "buttons", Required: false, Type: TypeArray, DefaultValue: []*primitive.Literal{primitive.Array(nil)}},
		}},
		{Name: "Carousel", ContentType: "carousel", Params: []ParamSchema{
			{Name: "cards", Required: true, Type: TypeArray},
		}},
		{Name: "Question", ContentType: "question", Params: []ParamSchema{
			{Name: "title", Required: false, Type: TypeString, DefaultValue: []*primitive.Literal{str("")}},
			{Name: "buttons", Required: true, Type: TypeArray},
		}},
		{Name: "Typing", ContentType: "typing", Params: []ParamSchema{
			{Name: "duration", Required: false, Type: TypeAny, DefaultValue: []*primitive.Literal{primitive.Int(0)}},
		}},
		{Name: "Wait", ContentType: "wait", Params: []ParamSchema{
			{Name: "duration", Required: false, Type: TypeAny, DefaultValue: []*primitive.Literal{primitive.Int(0)}},
		}},
	}
}
