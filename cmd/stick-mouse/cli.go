package main

import (
	"time"

	"github.com/sweeney/stick-mouse/internal/input"
)

// CLI is the root command line. Every flag can also be set from the
// environment or a config file.
type CLI struct {
	Log        LogConfig     `embed:"" prefix:"log."`
	ConfigFile string        `name:"config" help:"Configuration file (json, yaml or toml)" env:"STICK_MOUSE_CONFIG" type:"path"`
	Run        RunCmd        `cmd:"" default:"withargs" help:"Run the mouse bridge (default)"`
	PrintState PrintStateCmd `cmd:"" help:"Print one joystick sample and exit"`
	Descriptor DescriptorCmd `cmd:"" help:"Write the HID report descriptor"`
	ConfigCmd  ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}

// LogConfig selects the log level and an optional log file.
type LogConfig struct {
	Level string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"STICK_MOUSE_LOG_LEVEL"`
	File  string `help:"Also write logs to this file" env:"STICK_MOUSE_LOG_FILE"`
}

// InputConfig selects the joystick hardware.
type InputConfig struct {
	Chip      string `help:"GPIO chip for the button" default:"gpiochip0" env:"STICK_MOUSE_INPUT_CHIP"`
	ButtonPin int    `help:"Button line offset (active-low, pulled up)" default:"17" env:"STICK_MOUSE_INPUT_BUTTON_PIN"`
	IIODir    string `help:"IIO device directory of the ADC" default:"/sys/bus/iio/devices/iio:device0" env:"STICK_MOUSE_INPUT_IIO_DIR"`
	XChannel  int    `help:"ADC channel of the X axis" default:"0" env:"STICK_MOUSE_INPUT_X_CHANNEL"`
	YChannel  int    `help:"ADC channel of the Y axis" default:"1" env:"STICK_MOUSE_INPUT_Y_CHANNEL"`
	ADCMax    int    `help:"Full-scale raw ADC value" default:"4095" env:"STICK_MOUSE_INPUT_ADC_MAX"`
}

func (c InputConfig) config() input.Config {
	return input.Config{
		Chip:      c.Chip,
		ButtonPin: c.ButtonPin,
		IIODir:    c.IIODir,
		XChannel:  c.XChannel,
		YChannel:  c.YChannel,
		ADCMax:    c.ADCMax,
	}
}

// MQTTConfig configures telemetry and remote commands.
type MQTTConfig struct {
	Broker     string `help:"MQTT broker address (empty disables)" env:"STICK_MOUSE_MQTT_BROKER"`
	ClientID   string `help:"MQTT client ID" default:"stick-mouse" env:"STICK_MOUSE_MQTT_CLIENT_ID"`
	BufferSize int    `help:"Messages kept while disconnected" default:"100" env:"STICK_MOUSE_MQTT_BUFFER_SIZE"`
}

// LEDConfig configures the status indicator and USB state polling.
type LEDConfig struct {
	Chip    string        `help:"GPIO chip for the LED" default:"gpiochip0" env:"STICK_MOUSE_LED_CHIP"`
	Pin     int           `help:"LED line offset (-1 disables)" default:"27" env:"STICK_MOUSE_LED_PIN"`
	UDCRoot string        `name:"udc-root" help:"sysfs directory of USB device controllers" default:"/sys/class/udc" env:"STICK_MOUSE_LED_UDC_ROOT"`
	UDC     string        `name:"udc" help:"USB device controller name (empty picks the first)" env:"STICK_MOUSE_LED_UDC"`
	Poll    time.Duration `help:"USB state polling interval" default:"100ms" env:"STICK_MOUSE_LED_POLL"`
}

// RunCmd runs the daemon.
type RunCmd struct {
	Tick      time.Duration `help:"Arbiter tick period" default:"1ms" env:"STICK_MOUSE_TICK"`
	Block     time.Duration `help:"Joystick block window after an injected command" default:"500ms" env:"STICK_MOUSE_BLOCK"`
	Hold      time.Duration `help:"Button hold that cycles the sensitivity level" default:"1s" env:"STICK_MOUSE_HOLD"`
	Level     int           `help:"Initial sensitivity level (1 high, 2 medium, 3 low)" default:"2" env:"STICK_MOUSE_LEVEL"`
	Jitter    string        `help:"Perturbation of injected deltas" enum:"legacy,symmetric,none" default:"legacy" env:"STICK_MOUSE_JITTER"`
	Seed      uint64        `help:"Jitter seed (0 seeds from the clock)" default:"0" env:"STICK_MOUSE_SEED"`
	Input     InputConfig   `embed:"" prefix:"input."`
	Sink      string        `help:"Report sink" enum:"gadget,log" default:"gadget" env:"STICK_MOUSE_SINK"`
	HID       string        `name:"hid" help:"HID gadget device" default:"/dev/hidg0" env:"STICK_MOUSE_HID"`
	TTY       string        `name:"tty" help:"Command channel tty (empty disables)" default:"/dev/ttyGS0" env:"STICK_MOUSE_TTY"`
	MQTT      MQTTConfig    `embed:"" prefix:"mqtt."`
	Heartbeat time.Duration `help:"Heartbeat interval (0 disables)" default:"15m" env:"STICK_MOUSE_HEARTBEAT"`
	HTTP      string        `name:"http" help:"HTTP status address (empty disables)" default:":80" env:"STICK_MOUSE_HTTP"`
	LED       LEDConfig     `embed:"" prefix:"led."`
}

// PrintStateCmd prints one sample.
type PrintStateCmd struct {
	Input InputConfig `embed:"" prefix:"input."`
}

// DescriptorCmd writes the report descriptor, e.g. into a configfs report_desc.
type DescriptorCmd struct {
	Output string `short:"o" help:"Destination file (defaults to stdout)" type:"path"`
}
