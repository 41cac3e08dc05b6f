package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"farmdash/internal/auth"
	"farmdash/internal/backend"
	"farmdash/internal/config"
	"farmdash/internal/dashboard"
	"farmdash/internal/event"
	"farmdash/internal/models"
	"farmdash/internal/storage"
	"farmdash/internal/weather"
)

// appContext carries the wired core into every subcommand.
type appContext struct {
	cfg      *config.FarmDashConfig
	client   *backend.HTTPClient
	notifier *event.ToastPublisher
}

type cli struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name='env-file',help='Load environment from a .env file.'"`

	Login     loginCmd     `cmd:"" help:"Sign in with email and password."`
	Signup    signupCmd    `cmd:"" help:"Create a new account."`
	Logout    logoutCmd    `cmd:"" help:"Terminate the current session."`
	Profile   profileCmd   `cmd:"" help:"Show or update the farm profile."`
	Avatar    avatarCmd    `cmd:"" help:"Upload a profile image."`
	Dashboard dashboardCmd `cmd:"" help:"Display the farm dashboard."`
}

func main() {
	var flags cli
	ctx := kong.Parse(&flags,
		kong.Name("farmdash"),
		kong.Description("Farm-management dashboard terminal client."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	cfg := config.New()
	client := backend.NewHTTPClient(cfg.BackendCfg)

	// Sessions survive between invocations as a token pair in the
	// environment.
	if accessToken := os.Getenv("FARMDASH_ACCESS_TOKEN"); accessToken != "" {
		refreshToken := os.Getenv("FARMDASH_REFRESH_TOKEN")
		if err := client.RestoreSession(accessToken, refreshToken); err != nil {
			log.Printf("Ignoring stored session: %v", err)
		}
	}

	app := &appContext{
		cfg:      cfg,
		client:   client,
		notifier: event.NewToastPublisher(16),
	}
	ctx.FatalIfErrorf(ctx.Run(app))
}

// startAuth builds and starts an auth container, with storage attached
// only when the command needs it.
func (a *appContext) startAuth(ctx context.Context, store storage.IObjectStorage) *auth.Container {
	container := auth.NewContainer(a.client, store, a.notifier)
	container.Start(ctx)
	return container
}

// flushToasts prints any outcome notifications raised during the command.
func (a *appContext) flushToasts() {
	for {
		select {
		case n := <-a.notifier.Notifications():
			fmt.Printf("[%s] %s: %s\n", n.Status, n.Title, n.Description)
		default:
			return
		}
	}
}

type loginCmd struct {
	Email    string `help:"Account email." required:""`
	Password string `help:"Account password." required:""`
}

func (cmd *loginCmd) Run(app *appContext) error {
	ctx := context.Background()
	container := app.startAuth(ctx, nil)
	defer container.Close()

	if err := container.SignIn(ctx, cmd.Email, cmd.Password); err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	user := container.User()
	fmt.Printf("Signed in as %s (%s)\n", user.Email, user.ID)
	if !container.IsProfileComplete() {
		fmt.Println("Your profile is incomplete. Run 'farmdash profile update' to finish it.")
	}

	session, err := app.client.GetSession(ctx)
	if err == nil && session != nil {
		fmt.Println("\nTo keep this session for later commands:")
		fmt.Printf("  export FARMDASH_ACCESS_TOKEN=%s\n", session.AccessToken)
		if session.RefreshToken != "" {
			fmt.Printf("  export FARMDASH_REFRESH_TOKEN=%s\n", session.RefreshToken)
		}
	}
	app.flushToasts()
	return nil
}

type signupCmd struct {
	Email    string `help:"Account email." required:""`
	Password string `help:"Account password." required:""`
}

func (cmd *signupCmd) Run(app *appContext) error {
	ctx := context.Background()
	container := app.startAuth(ctx, nil)
	defer container.Close()

	identity, err := container.SignUp(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("sign-up failed: %w", err)
	}
	fmt.Printf("Account created for %s (%s). Check your inbox if confirmation is required.\n",
		identity.Email, identity.ID)
	app.flushToasts()
	return nil
}

type logoutCmd struct{}

func (cmd *logoutCmd) Run(app *appContext) error {
	ctx := context.Background()
	container := app.startAuth(ctx, nil)
	defer container.Close()

	if err := container.SignOut(ctx); err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}
	fmt.Println("Signed out.")
	app.flushToasts()
	return nil
}

type profileCmd struct {
	Show   profileShowCmd   `cmd:"" default:"1" help:"Print the current profile."`
	Update profileUpdateCmd `cmd:"" help:"Update profile fields."`
}

type profileShowCmd struct{}

func (cmd *profileShowCmd) Run(app *appContext) error {
	ctx := context.Background()
	container := app.startAuth(ctx, nil)
	defer container.Close()

	user := container.User()
	if user == nil {
		return auth.ErrNotAuthenticated
	}

	profile := container.Profile()
	if profile == nil {
		fmt.Println("No profile yet. Run 'farmdash profile update' to create one.")
		return nil
	}

	fmt.Printf("Name:       %s\n", profile.FullName)
	fmt.Printf("Phone:      %s\n", profile.Phone)
	fmt.Printf("Farm:       %s (%s %s)\n", profile.FarmName, profile.FarmSize, profile.FarmSizeUnit)
	fmt.Printf("Location:   %s\n", profile.Location)
	fmt.Printf("Address:    %s\n", profile.Address)
	fmt.Printf("Main crops: %s\n", profile.MainCrops)
	fmt.Printf("Bio:        %s\n", profile.Bio)
	fmt.Printf("Avatar:     %s\n", profile.AvatarURL)
	fmt.Printf("Complete:   %v\n", container.IsProfileComplete())
	return nil
}

type profileUpdateCmd struct {
	FullName     *string `help:"Full name."`
	Phone        *string `help:"Phone number."`
	FarmName     *string `help:"Farm name."`
	FarmSize     *string `help:"Farm size."`
	FarmSizeUnit *string `help:"Farm size unit (acres, hectares)."`
	Location     *string `help:"Location."`
	Address      *string `help:"Address."`
	MainCrops    *string `help:"Main crops grown."`
	Bio          *string `help:"Short bio."`
}

func (cmd *profileUpdateCmd) Run(app *appContext) error {
	ctx := context.Background()
	container := app.startAuth(ctx, nil)
	defer container.Close()

	patch := models.ProfilePatch{
		FullName:     cmd.FullName,
		Phone:        cmd.Phone,
		FarmName:     cmd.FarmName,
		FarmSize:     cmd.FarmSize,
		FarmSizeUnit: cmd.FarmSizeUnit,
		Location:     cmd.Location,
		Address:      cmd.Address,
		MainCrops:    cmd.MainCrops,
		Bio:          cmd.Bio,
	}
	err := container.UpdateUserProfile(ctx, patch)
	app.flushToasts()
	return err
}

type avatarCmd struct {
	Upload avatarUploadCmd `cmd:"" default:"1" help:"Upload an avatar image."`
}

type avatarUploadCmd struct {
	File string `arg:"" help:"Path to the image file." type:"existingfile"`
}

func (cmd *avatarUploadCmd) Run(app *appContext) error {
	ctx := context.Background()

	store, err := storage.NewMinioStore(app.cfg.StorageCfg)
	if err != nil {
		return fmt.Errorf("storage unavailable: %w", err)
	}

	container := app.startAuth(ctx, store)
	defer container.Close()

	file, err := os.Open(cmd.File)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	url, err := container.UploadProfileImage(ctx, info.Name(), file, info.Size())
	app.flushToasts()
	if err != nil {
		return err
	}
	fmt.Printf("Avatar uploaded: %s\n", url)
	return nil
}

type dashboardCmd struct {
	Live    bool `help:"Pull live weather for the map center."`
	Refresh bool `help:"Reload after the initial display."`
}

func (cmd *dashboardCmd) Run(app *appContext) error {
	ctx := context.Background()
	container := app.startAuth(ctx, nil)
	defer container.Close()

	if container.User() == nil {
		return auth.ErrNotAuthenticated
	}

	var loader dashboard.IDashboardLoader = dashboard.SeedLoader{}
	if cmd.Live {
		loader = dashboard.LiveLoader{Weather: weather.NewClient(app.cfg.WeatherCfg)}
	}

	board := dashboard.NewContainer(loader, app.notifier)
	board.Load(ctx)
	if cmd.Refresh {
		board.RefreshDashboard(ctx)
	}
	app.flushToasts()

	if msg := board.Err(); msg != "" {
		fmt.Printf("(showing defaults: %s)\n\n", msg)
	}
	printDashboard(board)
	return nil
}

func printDashboard(board *dashboard.Container) {
	fmt.Println("Crops")
	for _, crop := range board.Crops() {
		marker := " "
		if selected := board.SelectedCrop(); selected != nil && selected.ID == crop.ID {
			marker = "*"
		}
		fmt.Printf(" %s %-10s %s: %.0f %s (%d%%)\n",
			marker, crop.Title, crop.Subtitle, crop.Value, crop.Unit, crop.Progress)
	}

	w := board.Weather()
	fmt.Printf("\nWeather: %.0f° %s\n", w.Temperature, w.Condition)
	for _, day := range w.Forecast {
		fmt.Printf("  %s %3.0f° %s\n", day.Day, day.Temp, day.Condition)
	}

	fmt.Println("\nSoil nutrients")
	for _, n := range board.Nutrients() {
		fmt.Printf("  %-18s %d%%\n", n.Label, n.Value)
	}

	fmt.Println("\nHarvesting costs")
	for _, item := range board.Costs() {
		fmt.Printf("  %-12s $%.0f\n", item.Category, item.Amount)
	}
	fmt.Printf("  %-12s $%.0f\n", "Total", board.CostTotal())

	center := board.MapCenter()
	fmt.Printf("\nMap center: %.4f, %.4f\n", center.Lat, center.Lng)
}
