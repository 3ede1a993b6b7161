package structures

// ProvisionConfig is the typed view of the provisioning config file. Only
// the keys this tool reads are mapped; the file itself carries much more.
type ProvisionConfig struct {
	UsbImages struct {
		AllInOne   bool   `yaml:"all_in_one"`
		Build      bool   `yaml:"build"`
		Bios       bool   `yaml:"bios"`
		Efi        bool   `yaml:"efi"`
		OutputPath string `yaml:"output_path"`
	} `yaml:"usb_images"`
	Profiles []Profile `yaml:"profiles"`
	Esp      struct {
		DestDir string `yaml:"dest_dir"`
	} `yaml:"esp"`
}

// Profile is a named OS/workload variant the image pipeline builds for.
type Profile struct {
	Name string `yaml:"name"`
}

// ProfileNames returns the configured profile names in file order. The
// order matters, the interactive menu numbers profiles by position.
func (c *ProvisionConfig) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}
