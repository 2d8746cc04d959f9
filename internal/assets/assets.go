package assets

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadTemplate loads a built-in template by name.
// Returns ErrTemplateNotFound if the template does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// BuiltinTemplates lists the names of the built-in templates.
func BuiltinTemplates() []string {
	return defaultLoader.Names()
}
