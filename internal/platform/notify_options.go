package platform

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName identifies the sender. Empty means "photoclip".
	AppName string

	// IconPath, when non-empty, points to an image file shown with the
	// notification where the platform supports it.
	IconPath string

	// Timeout in milliseconds; zero uses 5000.
	Timeout int32
}

func (o Options) appName() string {
	if o.AppName == "" {
		return "photoclip"
	}
	return o.AppName
}

func (o Options) timeout() int32 {
	if o.Timeout <= 0 {
		return 5000
	}
	return o.Timeout
}
