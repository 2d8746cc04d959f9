package assets

// Loader defines the contract for loading header templates by name.
type Loader interface {
	// LoadTemplate loads a template by name (without the .tmpl extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)
}

// DefaultTemplateName is the name of the built-in header template.
const DefaultTemplateName = "arduino"

// templateExt is the file extension of header templates.
const templateExt = ".tmpl"
