package rtc

import (
	"time"

	"codeberg.org/mutker/vuclock/internal/errors"
	"periph.io/x/conn/v3/i2c"
)

// DS1307 register map. The time registers are BCD encoded; bit 7 of the
// seconds register is the clock-halt flag.
const (
	Address = 0x68

	regSeconds = 0x00
	regMinutes = 0x01
	regHours   = 0x02
	regWeekday = 0x03
	regDay     = 0x04
	regMonth   = 0x05
	regYear    = 0x06

	clockHaltBit = 0x80
	hour12Bit    = 0x40
)

// DS1307 is a Maxim DS1307 real-time clock on an I2C bus.
type DS1307 struct {
	dev i2c.Dev
}

// New probes the clock at its fixed address. A probe failure means the device
// is absent or unreachable, which the daemon treats as fatal: there is no
// meaningful degraded mode without a time source.
func New(bus i2c.Bus) (*DS1307, error) {
	errFactory := errors.New()
	d := &DS1307{dev: i2c.Dev{Bus: bus, Addr: Address}}

	var buf [1]byte
	if err := d.dev.Tx([]byte{regSeconds}, buf[:]); err != nil {
		return nil, errFactory.Wrap(ErrDeviceNotFound, err)
	}

	return d, nil
}

// Now reads the stored date and time in one register burst.
func (d *DS1307) Now() (Snapshot, error) {
	errFactory := errors.New()

	var buf [7]byte
	if err := d.dev.Tx([]byte{regSeconds}, buf[:]); err != nil {
		return Snapshot{}, errFactory.Wrap(ErrReadFailed, err)
	}

	return Snapshot{
		Second: bcdToDec(buf[regSeconds] & 0x7F),
		Minute: bcdToDec(buf[regMinutes] & 0x7F),
		Hour:   bcdToDec(buf[regHours] & 0x3F),
		Day:    bcdToDec(buf[regDay] & 0x3F),
		Month:  time.Month(bcdToDec(buf[regMonth] & 0x1F)),
		Year:   bcdToDec(buf[regYear]) + 2000,
	}, nil
}

// IsRunning reports whether the oscillator is enabled. The halt bit is set
// from the factory and after battery loss.
func (d *DS1307) IsRunning() (bool, error) {
	errFactory := errors.New()

	var buf [1]byte
	if err := d.dev.Tx([]byte{regSeconds}, buf[:]); err != nil {
		return false, errFactory.Wrap(ErrReadFailed, err)
	}

	return buf[0]&clockHaltBit == 0, nil
}

// SetTime stores a new time. Writing the seconds register with the halt bit
// clear also starts the oscillator; the hours register is written in 24-hour
// mode.
func (d *DS1307) SetTime(t Snapshot) error {
	errFactory := errors.New()

	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return errFactory.WithData(ErrInvalidTime, t)
	}

	buf := []byte{
		regSeconds,
		decToBcd(t.Second),
		decToBcd(t.Minute),
		decToBcd(t.Hour),
		1, // weekday, unused by the display
		decToBcd(t.Day),
		decToBcd(int(t.Month)),
		decToBcd(t.Year - 2000),
	}
	if err := d.dev.Tx(buf, nil); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	return nil
}

// decToBcd converts int to BCD
func decToBcd(dec int) byte {
	return byte(dec + 6*(dec/10))
}

// bcdToDec converts BCD to int
func bcdToDec(bcd byte) int {
	return int(bcd - 6*(bcd>>4))
}
